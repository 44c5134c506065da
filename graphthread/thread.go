// Package graphthread runs a filter graph on a dedicated goroutine.
//
// A Thread owns a root filter: all calls into the graph are made by the
// serving goroutine (see Do), and the graph is re-run every time a filter
// of it gets woken up from another goroutine (for example by an
// asyncqueue attachment).
package graphthread

import (
	"context"
	"sync"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/helpers/closuresignaler"
	"github.com/xaionaro-go/pinflow/logger"
	"github.com/xaionaro-go/xcontext"
	"github.com/xaionaro-go/xsync"
)

// IdleFunc is called by the serving goroutine each time the graph has
// nothing left to do.
type IdleFunc func(ctx context.Context, root *filter.Filter)

type Thread struct {
	*closuresignaler.ClosureSignaler

	root     *filter.Filter
	wakeupCh chan struct{}
	onIdle   *IdleFunc

	locker  xsync.Mutex
	queue   []func(context.Context)
	stopped bool

	waitGroup sync.WaitGroup
}

// New creates a thread with a new root filter; the options are passed to
// filter.NewRoot (the wakeup function is always overridden).
func New(
	ctx context.Context,
	opts ...filter.Option,
) *Thread {
	t := &Thread{
		ClosureSignaler: closuresignaler.New(),
		wakeupCh:        make(chan struct{}, 1),
	}
	opts = append(opts, filter.OptionWakeupFunc(t.Wakeup))
	t.root = filter.NewRoot(ctx, opts...)
	return t
}

// Root returns the root filter. It may be used only from within Do (or
// before the thread is started).
func (t *Thread) Root() *filter.Filter {
	return t.root
}

// Wakeup makes the serving goroutine run the graph. It never blocks.
func (t *Thread) Wakeup(ctx context.Context) {
	select {
	case t.wakeupCh <- struct{}{}:
	default:
	}
}

func (t *Thread) SetOnIdle(fn IdleFunc) {
	if fn == nil {
		xatomic.StorePointer(&t.onIdle, (*IdleFunc)(nil))
		return
	}
	xatomic.StorePointer(&t.onIdle, &fn)
}

// Do runs fn on the serving goroutine and waits for it to finish.
func (t *Thread) Do(
	ctx context.Context,
	fn func(ctx context.Context, root *filter.Filter),
) error {
	done := make(chan struct{})
	stopped := xsync.DoR1(xsync.WithNoLogging(ctx, true), &t.locker, func() bool {
		if t.stopped {
			return true
		}
		t.queue = append(t.queue, func(ctx context.Context) {
			defer close(done)
			fn(ctx, t.root)
		})
		return false
	})
	if stopped {
		return ErrClosed{}
	}
	t.Wakeup(ctx)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Thread) takeQueue(ctx context.Context, stop bool) []func(context.Context) {
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &t.locker, func() []func(context.Context) {
		queue := t.queue
		t.queue = nil
		if stop {
			t.stopped = true
		}
		return queue
	})
}

// Serve runs the graph until the context is cancelled or the thread is
// closed. On exit the graph is reset and the closures still queued by Do
// are executed.
func (t *Thread) Serve(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Serve")
	defer func() { logger.Debugf(ctx, "/Serve: %v", _err) }()

	defer func() {
		ctx := xcontext.DetachDone(ctx)
		for _, fn := range t.takeQueue(ctx, true) {
			fn(ctx)
		}
		t.root.Reset(ctx)
	}()

	for {
		for _, fn := range t.takeQueue(ctx, false) {
			fn(ctx)
		}
		t.root.Run(ctx)
		if fn := xatomic.LoadPointer(&t.onIdle); fn != nil {
			(*fn)(ctx, t.root)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.CloseChan():
			return nil
		case <-t.wakeupCh:
		}
	}
}

// Start launches Serve in a new goroutine.
func (t *Thread) Start(ctx context.Context) {
	t.waitGroup.Add(1)
	observability.Go(ctx, func(ctx context.Context) {
		defer t.waitGroup.Done()
		err := t.Serve(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Errorf(ctx, "unable to serve the graph: %v", err)
		}
	})
}

// Close stops the serving goroutine (started by Start) and waits for it to
// exit. The graph itself is left intact; destroy it with Do before closing
// if needed.
func (t *Thread) Close(ctx context.Context) error {
	t.ClosureSignaler.Close(ctx)
	t.waitGroup.Wait()
	return nil
}
