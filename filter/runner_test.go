package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	log  *[]string
	err  error
}

func (r *recorder) Process(ctx context.Context, f *Filter) error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func newRecorder(
	t *testing.T,
	ctx context.Context,
	parent *Filter,
	name string,
	log *[]string,
	opts ...Option,
) *Filter {
	f, err := New(ctx, parent, &recorder{name: name, log: log}, append(Options{OptionName(name)}, opts...)...)
	require.NoError(t, err)
	return f
}

func TestRunPriorityOrder(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	var log []string
	a := newRecorder(t, ctx, root, "A", &log)
	b := newRecorder(t, ctx, root, "B", &log)
	c := newRecorder(t, ctx, root, "C", &log, OptionHighPriority(true))
	require.True(t, c.IsHighPriority())
	require.False(t, root.Run(ctx))
	require.Empty(t, log)

	a.MarkAsyncProgress(ctx)
	b.MarkAsyncProgress(ctx)
	c.MarkAsyncProgress(ctx)
	require.False(t, a.IsPending())
	root.Run(ctx)
	require.Equal(t, []string{"C", "B", "A"}, log)
}

func TestRunInterrupt(t *testing.T) {
	ctx := newTestContext(t)
	wakeups := 0
	root := NewRoot(ctx, OptionWakeupFunc(func(ctx context.Context) {
		wakeups++
	}))
	var log []string
	a := newRecorder(t, ctx, root, "A", &log)
	h := newRecorder(t, ctx, root, "H", &log)
	h.SetHighPriority(true)

	// wakeups are coalesced until the next Run
	a.Wakeup(ctx)
	h.Wakeup(ctx)
	require.Equal(t, 1, wakeups)
	root.Run(ctx)
	require.Equal(t, []string{"H", "A"}, log)

	log = log[:0]
	a.MarkAsyncProgress(ctx)
	h.MarkAsyncProgress(ctx)
	require.Equal(t, 1, wakeups)
	root.Interrupt(ctx)
	root.Run(ctx)
	require.Equal(t, []string{"H"}, log)
	require.Equal(t, 2, wakeups)
	require.True(t, a.IsPending())

	root.Run(ctx)
	require.Equal(t, []string{"H", "A"}, log)
	require.Equal(t, 2, wakeups)
}

func TestRunMaxRunTime(t *testing.T) {
	ctx := newTestContext(t)
	wakeups := 0
	root := NewRoot(ctx, OptionMaxRunTime(0))
	root.SetWakeupFunc(ctx, func(ctx context.Context) {
		wakeups++
	})
	var log []string
	a := newRecorder(t, ctx, root, "A", &log)
	b := newRecorder(t, ctx, root, "B", &log)

	a.MarkAsyncProgress(ctx)
	b.MarkAsyncProgress(ctx)
	root.Run(ctx)
	require.Equal(t, []string{"B"}, log)
	require.Equal(t, 1, wakeups)

	root.Run(ctx)
	require.Equal(t, []string{"B", "A"}, log)

	root.SetMaxRunTime(ctx, -1)
	a.MarkAsyncProgress(ctx)
	b.MarkAsyncProgress(ctx)
	root.Run(ctx)
	require.Equal(t, []string{"B", "A", "B", "A"}, log)
}

func TestRunRootOnly(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	var log []string
	a := newRecorder(t, ctx, root, "A", &log)
	require.Panics(t, func() { a.Run(ctx) })
	require.Panics(t, func() { a.Interrupt(ctx) })
	require.Panics(t, func() { a.MarkProgress(ctx) })
	require.Equal(t, root, a.Root())
	require.True(t, root.IsRoot())
}

// handler is the error handler of its children.
type handler struct {
	failures []*ErrFailed
}

func (h *handler) Process(ctx context.Context, f *Filter) error {
	for _, child := range f.Children() {
		if failure := child.TakeFailure(); failure != nil {
			h.failures = append(h.failures, failure)
		}
	}
	return nil
}

func TestFailureHandled(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	h := &handler{}
	parent, err := New(ctx, root, h)
	require.NoError(t, err)

	errBoom := errors.New("boom")
	var log []string
	child, err := New(ctx, parent, &recorder{name: "child", log: &log, err: errBoom}, OptionErrorHandler(parent))
	require.NoError(t, err)
	require.Equal(t, parent, child.ErrorHandler())

	child.MarkAsyncProgress(ctx)
	root.Run(ctx)
	require.Equal(t, []string{"child"}, log)
	require.Len(t, h.failures, 1)
	require.ErrorIs(t, h.failures[0], errBoom)
	require.Equal(t, child, h.failures[0].Filter)
	require.Equal(t, parent, h.failures[0].HandledBy)
	require.True(t, h.failures[0].IsHandled())

	require.False(t, child.HasFailed())
	require.False(t, parent.HasFailed())
	require.False(t, root.HasFailed())
	require.Empty(t, root.TakeUnhandledFailures(ctx))
}

func TestFailureUnhandled(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	parent, err := New(ctx, root, nil)
	require.NoError(t, err)
	errBoom := errors.New("boom")
	var log []string
	child := newRecorder(t, ctx, parent, "child", &log)
	child.Implementation().(*recorder).err = errBoom

	child.MarkAsyncProgress(ctx)
	root.Run(ctx)

	failures := root.TakeUnhandledFailures(ctx)
	require.Len(t, failures, 1)
	require.ErrorIs(t, failures[0], errBoom)
	require.False(t, failures[0].IsHandled())
	require.Empty(t, root.TakeUnhandledFailures(ctx))

	// sticky until read
	require.True(t, child.HasFailed())
	require.False(t, child.HasFailed())
	require.True(t, parent.HasFailed())
	require.Equal(t, failures[0], root.TakeFailure())
	require.Nil(t, root.TakeFailure())
}

func TestDestroy(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	h := &holder{}
	f, err := New(ctx, root, h)
	require.NoError(t, err)
	var log []string
	grandchild := newRecorder(t, ctx, f, "grandchild", &log)
	grandchild.MarkAsyncProgress(ctx)
	root.Run(ctx)
	require.Equal(t, []string{"grandchild"}, log)

	freed := 0
	in := f.Input(0)
	require.True(t, in.Write(ctx, newTestFrame(1, &freed)))
	processCount := h.processCount

	grandchild.MarkAsyncProgress(ctx)
	f.MarkAsyncProgress(ctx)
	f.Destroy(ctx)
	require.True(t, f.IsDestroyed())
	require.True(t, grandchild.IsDestroyed())
	require.Equal(t, 1, h.destroyCount)
	require.Equal(t, 1, freed)
	require.Empty(t, root.Children())
	require.Zero(t, f.NumPins())

	f.Wakeup(ctx)
	root.Run(ctx)
	require.Equal(t, processCount, h.processCount)
	require.Equal(t, []string{"grandchild"}, log)

	f.Destroy(ctx)
	require.Equal(t, 1, h.destroyCount)
}

func TestDestroyChildren(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	var log []string
	for _, name := range []string{"A", "B", "C"} {
		newRecorder(t, ctx, root, name, &log)
	}
	require.Len(t, root.Children(), 3)
	root.DestroyChildren(ctx)
	require.Empty(t, root.Children())
	root.Run(ctx)
	require.Empty(t, log)
}
