package filter

import (
	"context"
)

// ChainFilters connects in to the first filter, each filter to the next one,
// and the last filter to out. Every filter must have exactly two pins: an
// input and an output (in this order). Nil filters are skipped; with no
// filters at all in is connected directly to out.
func ChainFilters(
	ctx context.Context,
	in *OutPin,
	out *InPin,
	filters ...*Filter,
) {
	for _, f := range filters {
		if f == nil {
			continue
		}
		assert(ctx, f.NumPins() == 2, "a chained filter must have exactly 2 pins", f, f.NumPins())
		Connect(ctx, f.Input(0), in)
		in = f.Output(1)
	}
	Connect(ctx, out, in)
}
