package filter

import (
	"context"
)

func resetPin(ctx context.Context, p *pin) {
	if p.conn == nil || p.direction != DirectionOut {
		assert(ctx, p.data.IsNone(), "data on a pin which cannot have it", p, p.data)
		assert(ctx, !p.dataRequested, "a request on a pin which cannot have it", p)
	}
	p.data.Unref()
	p.dataRequested = false
}

// Reset drops all the buffered data and requests of the filter and of its
// children (children first), and then calls the Reset of the implementation.
// Connections are not affected.
func (f *Filter) Reset(ctx context.Context) {
	for _, child := range f.children {
		child.Reset(ctx)
	}

	for idx, p := range f.ppins {
		resetPin(ctx, p)
		resetPin(ctx, f.pins[idx])
	}

	if resetter, ok := f.impl.(Resetter); ok {
		resetter.Reset(ctx, f)
	}
}
