// Package passthrough provides a filter forwarding frames as is.
package passthrough

import (
	"context"

	"github.com/xaionaro-go/pinflow/filter"
)

type Passthrough struct {
	in  *filter.OutPin
	out *filter.InPin
}

var _ filter.Abstract = (*Passthrough)(nil)

// New creates a filter with pins "in" (#0) and "out" (#1).
func New(
	ctx context.Context,
	parent *filter.Filter,
	opts ...filter.Option,
) (*filter.Filter, error) {
	return filter.New(ctx, parent, &Passthrough{}, opts...)
}

func (p *Passthrough) String() string {
	return "passthrough"
}

func (p *Passthrough) Init(ctx context.Context, f *filter.Filter) error {
	p.in = f.AddInput(ctx, "in")
	p.out = f.AddOutput(ctx, "out")
	return nil
}

func (p *Passthrough) Process(ctx context.Context, f *filter.Filter) error {
	filter.TransferData(ctx, p.out, p.in)
	return nil
}
