package filter

import (
	"context"
	"slices"

	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	"github.com/xaionaro-go/pinflow/logger"
)

// SetErrorHandler makes handler responsible for failures of f and of its
// descendants (which have no closer error handler). The handler is made
// pending on such failures, and is expected to check HasFailed/TakeFailure.
func (f *Filter) SetErrorHandler(handler *Filter) {
	f.errorHandler = handler
}

func (f *Filter) ErrorHandler() *Filter {
	return f.errorHandler
}

// MarkFailed puts the filter into the failed state and propagates the failure
// up the parent chain, until the first filter having an error handler; that
// handler is made pending. The failed state is kept by every filter on the
// way until it is consumed by HasFailed or TakeFailure.
//
// Process returning an error is equivalent to calling MarkFailed.
func (f *Filter) MarkFailed(ctx context.Context, err error) {
	failure := &ErrFailed{Filter: f, Err: err}
	logger.Debugf(ctx, "MarkFailed(%s): %v", f, err)

	for cur := f; cur != nil; cur = cur.parent {
		cur.failed = true
		cur.failure = failure
		if cur.errorHandler != nil {
			failure.HandledBy = cur.errorHandler
			addPending(ctx, cur.errorHandler)
			return
		}
	}

	r := f.runner
	r.unhandledFailures = append(r.unhandledFailures, failure)
	logger.Errorf(ctx, "unhandled failure: %v", failure)
	errmon.ObserveErrorCtx(ctx, failure)
}

// HasFailed returns true if the filter (or any of its descendants, up to the
// nearest error handler) failed since the last call. Calling it resets the
// failed state.
func (f *Filter) HasFailed() bool {
	failed := f.failed
	f.failed = false
	f.failure = nil
	return failed
}

// TakeFailure is HasFailed, but returns the last failure (or nil).
func (f *Filter) TakeFailure() *ErrFailed {
	failure := f.failure
	f.failed = false
	f.failure = nil
	return failure
}

// TakeUnhandledFailures returns the failures which did not reach any error
// handler since the last call. Root only.
func (f *Filter) TakeUnhandledFailures(ctx context.Context) []*ErrFailed {
	r := f.runner
	assert(ctx, f == r.root, "TakeUnhandledFailures may be called on the root only", f)
	result := slices.Clone(r.unhandledFailures)
	r.unhandledFailures = r.unhandledFailures[:0]
	return result
}
