// Package gate provides a filter dropping frames not matching a condition.
package gate

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame/condition"
	"github.com/xaionaro-go/pinflow/logger"
)

type Gate struct {
	condition condition.Condition
	in        *filter.OutPin
	out       *filter.InPin
}

var _ filter.Abstract = (*Gate)(nil)

// New creates a filter with pins "in" (#0) and "out" (#1) forwarding only the
// frames matching cond. Signaling frames are always forwarded.
func New(
	ctx context.Context,
	parent *filter.Filter,
	cond condition.Condition,
	opts ...filter.Option,
) (*filter.Filter, error) {
	return filter.New(ctx, parent, &Gate{condition: cond}, opts...)
}

func (g *Gate) String() string {
	return fmt.Sprintf("gate(%s)", g.condition)
}

func (g *Gate) Init(ctx context.Context, f *filter.Filter) error {
	g.in = f.AddInput(ctx, "in")
	g.out = f.AddOutput(ctx, "out")
	return nil
}

func (g *Gate) Process(ctx context.Context, f *filter.Filter) error {
	if !filter.CanTransferData(ctx, g.out, g.in) {
		return nil
	}
	in := g.in.Read(ctx)
	if in.IsSignaling() || g.condition.Match(ctx, in) {
		g.out.Write(ctx, in)
		return nil
	}
	logger.Tracef(ctx, "dropping %s", in)
	f.Counters.Missed.Increment(in.Kind, in.ApproxSize())
	in.Unref()
	// the output is still waiting
	g.in.RequestData(ctx)
	return nil
}
