// Package delay provides a filter delaying frames by one: a frame is emitted
// when the next one arrives (or on the end of the stream).
package delay

import (
	"context"

	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/logger"
)

type Delay struct {
	in       *filter.OutPin
	out      *filter.InPin
	buffered frame.Frame
}

var (
	_ filter.Abstract  = (*Delay)(nil)
	_ filter.Resetter  = (*Delay)(nil)
	_ filter.Destroyer = (*Delay)(nil)
)

// New creates a filter with pins "in" (#0) and "out" (#1).
func New(
	ctx context.Context,
	parent *filter.Filter,
	opts ...filter.Option,
) (*filter.Filter, error) {
	return filter.New(ctx, parent, &Delay{}, opts...)
}

func (d *Delay) String() string {
	return "delay"
}

func (d *Delay) Init(ctx context.Context, f *filter.Filter) error {
	d.in = f.AddInput(ctx, "in")
	d.out = f.AddOutput(ctx, "out")
	return nil
}

func (d *Delay) Process(ctx context.Context, f *filter.Filter) error {
	if !filter.CanTransferData(ctx, d.out, d.in) {
		return nil
	}

	in := d.in.Read(ctx)
	if in.IsSignaling() {
		if d.buffered.IsNone() {
			d.out.Write(ctx, in)
			return nil
		}
		logger.Debugf(ctx, "flushing %s before %s", d.buffered, in)
		d.out.Write(ctx, d.buffered)
		d.buffered = frame.None
		// the EOF is forwarded on the next request
		d.in.RepeatEOF(ctx)
		return nil
	}

	prev := d.buffered
	d.buffered = in
	if prev.IsNone() {
		d.in.RequestData(ctx)
		return nil
	}
	d.out.Write(ctx, prev)
	return nil
}

func (d *Delay) Reset(ctx context.Context, f *filter.Filter) {
	d.buffered.Unref()
}

func (d *Delay) Destroy(ctx context.Context, f *filter.Filter) {
	d.buffered.Unref()
}
