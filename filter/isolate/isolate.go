// Package isolate provides a wrapper disabling the wrapped filter if it
// fails: the wrapped filter is reset and the wrapper becomes a passthrough.
package isolate

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/logger"
)

// BuildFunc creates the wrapped filter; it must have an input (#0) and an
// output (#1) pin.
type BuildFunc func(ctx context.Context, parent *filter.Filter) (*filter.Filter, error)

type Isolate struct {
	build  BuildFunc
	in     *filter.OutPin
	out    *filter.InPin
	child  *filter.Filter
	failed bool
}

var (
	_ filter.Abstract  = (*Isolate)(nil)
	_ filter.Initer    = (*Isolate)(nil)
	_ filter.Commander = (*Isolate)(nil)
)

// New creates a wrapper with pins "in" (#0) and "out" (#1) around the filter
// returned by build.
func New(
	ctx context.Context,
	parent *filter.Filter,
	build BuildFunc,
	opts ...filter.Option,
) (*filter.Filter, error) {
	return filter.New(ctx, parent, &Isolate{build: build}, opts...)
}

func (w *Isolate) String() string {
	if w.child == nil {
		return "isolate"
	}
	return fmt.Sprintf("isolate(%s)", w.child)
}

func (w *Isolate) Init(ctx context.Context, f *filter.Filter) error {
	child, err := w.build(ctx, f)
	if err != nil {
		return fmt.Errorf("unable to build the wrapped filter: %w", err)
	}
	if child.NumPins() != 2 {
		return fmt.Errorf("the wrapped filter is expected to have 2 pins, but has %d", child.NumPins())
	}
	w.child = child
	child.SetErrorHandler(f)
	w.in = f.AddInput(ctx, "in")
	w.out = f.AddOutput(ctx, "out")
	return nil
}

// Child returns the wrapped filter.
func (w *Isolate) Child() *filter.Filter {
	return w.child
}

// HasFailed returns true if the wrapped filter has been disabled.
func (w *Isolate) HasFailed() bool {
	return w.failed
}

func (w *Isolate) Process(ctx context.Context, f *filter.Filter) error {
	if !w.failed {
		if failure := w.child.TakeFailure(); failure != nil {
			logger.Errorf(ctx, "disabling filter '%s' because it has failed: %v", w.child, failure.Err)
			w.child.Reset(ctx)
			w.failed = true
		}
	}

	if w.failed {
		filter.TransferData(ctx, w.out, w.in)
		return nil
	}

	filter.TransferData(ctx, w.child.Input(0), w.in)
	filter.TransferData(ctx, w.out, w.child.Output(1))
	return nil
}

func (w *Isolate) Reset(ctx context.Context, f *filter.Filter) {
	w.failed = false
}

func (w *Isolate) Command(ctx context.Context, f *filter.Filter, cmd *filter.Command) error {
	if cmd.Type == filter.CommandTypeIsActive {
		cmd.IsActive = !w.failed
		return nil
	}
	if w.failed {
		return filter.ErrNotSupportedCommand{Type: cmd.Type}
	}
	return w.child.Command(ctx, cmd)
}
