package filter

import (
	"context"
	"slices"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/pinflow/logger"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// runner is the state shared by all filters of one root.
type runner struct {
	root *Filter

	maxRunTime    typing.Optional[time.Duration]
	interruptFlag atomic.Bool

	// filtering is set while Run is in progress (nested runs are not allowed).
	filtering bool

	// recursive is the pin whose external access started the current run.
	recursive *pin

	// pending is the list of filters to be processed: high priority filters
	// are at the front, the rest is processed from the back.
	pending []*Filter

	// externalPending is set if a pin manually connected to the root changed
	// its state (so the user of the graph has something to do).
	externalPending bool

	unhandledFailures []*ErrFailed

	asyncLocker     xsync.Mutex
	asyncWakeupSent bool
	asyncPending    []*Filter
	wakeupFunc      *WakeupFunc
}

func newRunner(root *Filter, cfg Config) *runner {
	r := &runner{
		root:       root,
		maxRunTime: cfg.MaxRunTime,
	}
	if cfg.WakeupFunc != nil {
		r.wakeupFunc = &cfg.WakeupFunc
	}
	return r
}

func addPending(ctx context.Context, f *Filter) {
	if f.pending || f.IsDestroyed() {
		return
	}
	r := f.runner
	f.pending = true
	if f.highPriority {
		r.pending = slices.Insert(r.pending, 0, f)
	} else {
		r.pending = append(r.pending, f)
	}
	logger.Tracef(ctx, "addPending(%s): %d pending", f, len(r.pending))
}

// addPendingPin notifies the manual connection of p that the state of p
// changed.
func addPendingPin(ctx context.Context, p *pin) {
	f := p.manualConn
	assert(ctx, f != nil, "the pin has no manual connection", p)

	if f.pending {
		return
	}

	addPending(ctx, f)

	r := f.runner
	if f == r.root && p != r.recursive {
		r.externalPending = true
	}
}

func (r *runner) removePending(f *Filter) {
	idx := slices.Index(r.pending, f)
	if idx < 0 {
		return
	}
	r.pending = slices.Delete(r.pending, idx, idx+1)
	f.pending = false
}

// driveFromExternalAccess runs the graph if p was accessed from outside of
// the graph (by its user). This way pushing and pulling frames through
// manually connected pins works without calling Run explicitly. Accesses
// made by filters from within Process never run the graph recursively.
func driveFromExternalAccess(ctx context.Context, p *pin) {
	f := p.conn.manualConn
	assert(ctx, f != nil, "the pin has no manual connection", p)
	r := f.runner

	if r.filtering {
		return
	}

	assert(ctx, r.recursive == nil, "recursive run is already in progress", r.recursive)
	r.recursive = p
	if r.root.Run(ctx) {
		r.externalPending = true
	}
	assert(ctx, r.recursive == p, "recursive run pin changed", r.recursive, p)
	r.recursive = nil
}

// flushAsync moves the filters marked asynchronously into the pending list.
func (r *runner) flushAsync(ctx context.Context) {
	r.asyncLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		for _, f := range r.asyncPending {
			f.asyncPending = false
			if f.IsDestroyed() {
				continue
			}
			addPending(ctx, f)
		}
		r.asyncPending = r.asyncPending[:0]
		r.asyncWakeupSent = false
	})
}

// callWakeupLocked calls the wakeup function unless it was already called
// since the last flush. Must be called with asyncLocker held.
func (r *runner) callWakeupLocked(ctx context.Context) {
	if r.asyncWakeupSent {
		return
	}
	if fn := xatomic.LoadPointer(&r.wakeupFunc); fn != nil {
		(*fn)(ctx)
	}
	r.asyncWakeupSent = true
}

// Run processes pending filters until there is nothing left to do, the
// graph is interrupted, or the maximal run time is exceeded. It may be
// called on the root only.
//
// It returns true if any pin manually connected to the root changed its
// state (so the user should check them).
func (f *Filter) Run(ctx context.Context) (_ret bool) {
	r := f.runner
	assert(ctx, f == r.root, "Run may be called on the root only", f)
	assert(ctx, !r.filtering, "Run is already in progress", f)
	logger.Tracef(ctx, "Run")
	defer func() { logger.Tracef(ctx, "/Run: %v", _ret) }()

	var deadline time.Time
	if r.maxRunTime.IsSet() {
		deadline = time.Now().Add(max(r.maxRunTime.Get(), 0))
	}

	r.filtering = true
	defer func() { r.filtering = false }()

	r.flushAsync(ctx)

	exitRequested := false
	for {
		if r.interruptFlag.Swap(false) {
			r.asyncLocker.Do(xsync.WithNoLogging(ctx, true), func() {
				r.callWakeupLocked(ctx)
			})
			exitRequested = true
		}

		if len(r.pending) == 0 {
			r.flushAsync(ctx)
			if len(r.pending) == 0 {
				break
			}
		}

		var next *Filter
		switch {
		case r.pending[0].highPriority:
			next = r.pending[0]
			r.pending = slices.Delete(r.pending, 0, 1)
		case !exitRequested:
			next = r.pending[len(r.pending)-1]
			r.pending[len(r.pending)-1] = nil
			r.pending = r.pending[:len(r.pending)-1]
		}

		if next == nil {
			logger.Debugf(ctx, "interrupted with %d filters pending", len(r.pending))
			break
		}

		next.pending = false
		next.process(ctx)

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			r.interruptFlag.Store(true)
		}
	}

	assertSoft(ctx, exitRequested || len(r.pending) == 0, "Run finished with filters pending", len(r.pending))
	ext := r.externalPending
	r.externalPending = false
	return ext
}

func (f *Filter) process(ctx context.Context) {
	if f.impl == nil {
		return
	}
	ctx = belt.WithField(ctx, "filter", f.name)
	logger.Tracef(ctx, "Process")
	err := f.impl.Process(ctx, f)
	logger.Tracef(ctx, "/Process: %v", err)
	if err != nil {
		f.MarkFailed(ctx, err)
	}
}

// MarkProgress makes the runner call Process of the filter again. It may be
// called only from the Process of the filter itself (when it was not able to
// finish the work in one go).
func (f *Filter) MarkProgress(ctx context.Context) {
	assert(ctx, f.runner.filtering, "MarkProgress may be called only from Process", f)
	addPending(ctx, f)
}

func (f *Filter) wakeup(ctx context.Context, markOnly bool) {
	r := f.runner
	r.asyncLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		if f.IsDestroyed() {
			return
		}
		if !f.asyncPending {
			f.asyncPending = true
			r.asyncPending = append(r.asyncPending, f)
		}
		if !markOnly {
			r.callWakeupLocked(ctx)
		}
	})
}

// Wakeup asynchronously marks the filter as pending and calls the wakeup
// function of the graph (at most once until the next Run). It is safe to be
// called from any goroutine.
func (f *Filter) Wakeup(ctx context.Context) {
	f.wakeup(ctx, false)
}

// MarkAsyncProgress is Wakeup without calling the wakeup function: the
// filter will be processed on the next Run, whenever it happens.
func (f *Filter) MarkAsyncProgress(ctx context.Context) {
	f.wakeup(ctx, true)
}

// SetWakeupFunc sets the function to be called when the graph needs to be
// run again due to asynchronous events. Root only.
func (f *Filter) SetWakeupFunc(ctx context.Context, fn WakeupFunc) {
	r := f.runner
	assert(ctx, f == r.root, "SetWakeupFunc may be called on the root only", f)
	r.asyncLocker.Do(ctx, func() {
		if fn == nil {
			xatomic.StorePointer(&r.wakeupFunc, (*WakeupFunc)(nil))
			return
		}
		xatomic.StorePointer(&r.wakeupFunc, &fn)
	})
}

// SetMaxRunTime limits the duration of a single Run; after it is exceeded
// the graph gets interrupted. A negative value removes the limit. Root only.
func (f *Filter) SetMaxRunTime(ctx context.Context, d time.Duration) {
	r := f.runner
	assert(ctx, f == r.root, "SetMaxRunTime may be called on the root only", f)
	if d < 0 {
		r.maxRunTime.Unset()
		return
	}
	r.maxRunTime = typing.Opt(d)
}

// Interrupt makes the current (or the next) Run return as soon as possible:
// only high priority filters are still processed. The wakeup function is
// called, so the caller knows it should Run again. Safe to be called from
// any goroutine. Root only.
func (f *Filter) Interrupt(ctx context.Context) {
	r := f.runner
	assert(ctx, f == r.root, "Interrupt may be called on the root only", f)
	r.interruptFlag.Store(true)
}
