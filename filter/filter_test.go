package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/logger"
)

func newTestContext(t *testing.T) context.Context {
	t.Helper()
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.SetDefault(func() logger.Logger {
		return l
	})
	return ctx
}

type testPayload struct {
	id    int
	freed *int
}

func (p *testPayload) ApproxSize() uint64 { return 100 }
func (p *testPayload) Free() {
	if p.freed != nil {
		*p.freed++
	}
}

func newTestFrame(id int, freed *int) frame.Frame {
	return frame.New(frame.KindCustom, &testPayload{id: id, freed: freed})
}

func frameID(f frame.Frame) int {
	return f.Payload().(*testPayload).id
}

// passthrough moves frames from pin #0 to pin #1.
type passthrough struct {
	processCount int
}

func (p *passthrough) Init(ctx context.Context, f *Filter) error {
	f.AddInput(ctx, "in")
	f.AddOutput(ctx, "out")
	return nil
}

func (p *passthrough) Process(ctx context.Context, f *Filter) error {
	p.processCount++
	TransferData(ctx, f.PrivatePin(1).(*InPin), f.PrivatePin(0).(*OutPin))
	return nil
}

func newPassthrough(t *testing.T, ctx context.Context, parent *Filter) (*Filter, *passthrough) {
	impl := &passthrough{}
	f, err := New(ctx, parent, impl, OptionName("passthrough"))
	require.NoError(t, err)
	return f, impl
}

// holder requests a single frame on its input and never consumes it.
type holder struct {
	processCount int
	resetCount   int
	destroyCount int
}

func (h *holder) Init(ctx context.Context, f *Filter) error {
	f.AddInput(ctx, "in")
	return nil
}

func (h *holder) Process(ctx context.Context, f *Filter) error {
	h.processCount++
	f.PrivatePin(0).(*OutPin).RequestData(ctx)
	return nil
}

func (h *holder) Reset(ctx context.Context, f *Filter) {
	h.resetCount++
}

func (h *holder) Destroy(ctx context.Context, f *Filter) {
	h.destroyCount++
}

func TestPinWriteRequiresRequest(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	h := &holder{}
	f, err := New(ctx, root, h)
	require.NoError(t, err)
	in := f.Input(0)

	freed := 0
	require.False(t, in.NeedsData(ctx))
	require.False(t, in.Write(ctx, newTestFrame(1, &freed)))
	require.Equal(t, 1, freed)
	require.Equal(t, uint64(1), f.GetStatistics().Missed.Other.Count)

	root.Run(ctx)
	require.True(t, in.NeedsData(ctx))
	require.True(t, in.Write(ctx, newTestFrame(2, &freed)))

	// the slot is occupied until the frame is read
	for i := 0; i < 3; i++ {
		require.False(t, in.NeedsData(ctx))
		require.False(t, in.Write(ctx, newTestFrame(3+i, &freed)))
	}
	require.Equal(t, 4, freed)
	require.False(t, in.Write(ctx, frame.None))

	pin := f.PrivatePin(0).(*OutPin)
	require.True(t, pin.HasData(ctx))
	f.Reset(ctx)
	require.Equal(t, 5, freed)
	require.Equal(t, 1, h.resetCount)
	require.False(t, pin.HasData(ctx))
	require.False(t, in.NeedsData(ctx))
}

func TestPinNoDoubleRequest(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	f, impl := newPassthrough(t, ctx, root)
	root.Run(ctx)
	require.Equal(t, 1, impl.processCount)

	out := f.Output(1)
	require.False(t, out.RequestData(ctx))
	require.Equal(t, 2, impl.processCount)
	require.False(t, out.RequestData(ctx))
	require.False(t, out.HasData(ctx))
	require.Equal(t, 2, impl.processCount)
	require.True(t, f.Input(0).NeedsData(ctx))
}

func pushAndPull(
	t *testing.T,
	ctx context.Context,
	in *InPin,
	out *OutPin,
	frames []frame.Frame,
) []int {
	var result []int
	for _, f := range frames {
		got := out.Read(ctx)
		if !got.IsNone() {
			result = append(result, frameID(got))
			got.Unref()
		}
		require.True(t, in.NeedsData(ctx))
		require.True(t, in.Write(ctx, f))
		got = out.Read(ctx)
		require.False(t, got.IsNone())
		result = append(result, frameID(got))
		got.Unref()
	}
	return result
}

func TestOrderingThroughChain(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)

	var filters []*Filter
	for i := 0; i < 5; i++ {
		f, _ := newPassthrough(t, ctx, root)
		filters = append(filters, f)
	}
	for i := 1; i < len(filters); i++ {
		Connect(ctx, filters[i].Input(0), filters[i-1].Output(1))
	}
	// connecting again is a no-op
	Connect(ctx, filters[1].Input(0), filters[0].Output(1))

	freed := 0
	var frames []frame.Frame
	var expected []int
	for i := 0; i < 10; i++ {
		frames = append(frames, newTestFrame(i, &freed))
		expected = append(expected, i)
	}

	result := pushAndPull(t, ctx, filters[0].Input(0), filters[len(filters)-1].Output(1), frames)
	require.Equal(t, expected, result)
	require.Equal(t, 10, freed)

	for _, f := range filters {
		stats := f.GetStatistics()
		require.Equal(t, uint64(10), stats.Received.Other.Count)
		require.Equal(t, uint64(10), stats.Sent.Other.Count)
		require.Equal(t, uint64(1000), stats.Sent.Other.Bytes)
	}
}

func TestChainFilters(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	bin, err := New(ctx, root, nil, OptionName("bin"))
	require.NoError(t, err)
	binIn := bin.AddInput(ctx, "in")
	binOut := bin.AddOutput(ctx, "out")

	p1, _ := newPassthrough(t, ctx, bin)
	p2, _ := newPassthrough(t, ctx, bin)
	ChainFilters(ctx, binIn, binOut, p1, nil, p2)
	require.Len(t, bin.Children(), 2)

	freed := 0
	result := pushAndPull(t, ctx, bin.Input(0), bin.Output(1), []frame.Frame{
		newTestFrame(1, &freed),
		newTestFrame(2, &freed),
		newTestFrame(3, &freed),
	})
	require.Equal(t, []int{1, 2, 3}, result)

	bin.DumpStates(ctx)
}

func TestChainFiltersEmpty(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	bin, err := New(ctx, root, nil)
	require.NoError(t, err)
	ChainFilters(ctx, bin.AddInput(ctx, "in"), bin.AddOutput(ctx, "out"))

	freed := 0
	result := pushAndPull(t, ctx, bin.Input(0), bin.Output(1), []frame.Frame{
		newTestFrame(7, &freed),
	})
	require.Equal(t, []int{7}, result)
}

func TestUnreadAndRepeatEOF(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	f, err := New(ctx, root, &holder{})
	require.NoError(t, err)
	root.Run(ctx)
	require.True(t, f.Input(0).Write(ctx, frame.EOF()))

	pin := f.PrivatePin(0).(*OutPin)
	require.Panics(t, func() { pin.RepeatEOF(ctx) })

	got := pin.Read(ctx)
	require.Equal(t, frame.KindEOF, got.Kind)
	pin.RepeatEOF(ctx)
	got = pin.Read(ctx)
	require.Equal(t, frame.KindEOF, got.Kind)

	// after a Read nothing is requested automatically
	require.False(t, f.Input(0).NeedsData(ctx))
}

func TestUnconnectedPins(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	in := root.AddInput(ctx, "in")
	out := root.AddOutput(ctx, "out")
	require.False(t, root.Pin(0).IsConnected())
	require.True(t, in.IsConnected())
	require.Equal(t, DirectionOut, in.Direction())
	require.True(t, in.IsPrivate())
	require.True(t, in.Read(ctx).IsNone())
	require.False(t, in.RequestData(ctx))

	freed := 0
	require.False(t, out.Write(ctx, newTestFrame(1, &freed)))
	require.Equal(t, 1, freed)

	require.Equal(t, root.Pin(0), root.NamedPin("in"))
	require.Nil(t, root.NamedPin("nope"))
	require.Panics(t, func() { root.AddInput(ctx, "in") })
	require.Panics(t, func() { root.Output(0) })
}

func TestManualConnection(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	f, _ := newPassthrough(t, ctx, root)
	in := f.Input(0)
	require.Equal(t, root, in.ManualConnection())

	in.SetManualConnection(ctx, false)
	require.False(t, in.IsConnected())
	root.Run(ctx)
	require.False(t, in.NeedsData(ctx))

	in.SetManualConnection(ctx, true)
	require.Equal(t, root, in.ManualConnection())
	f.Output(1).RequestData(ctx)
	require.True(t, in.NeedsData(ctx))

	in.Disconnect(ctx)
	require.Nil(t, in.ManualConnection())
	require.False(t, in.NeedsData(ctx))
}

func TestRemovePinDropsData(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	f, err := New(ctx, root, &holder{})
	require.NoError(t, err)
	root.Run(ctx)

	freed := 0
	require.True(t, f.Input(0).Write(ctx, newTestFrame(1, &freed)))
	f.RemovePin(ctx, f.PrivatePin(0))
	require.Equal(t, 1, freed)
	require.Zero(t, f.NumPins())
	require.Equal(t, uint64(1), f.GetStatistics().Missed.Other.Count)
}

func TestCommandNotSupported(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	err := root.Command(ctx, &Command{Type: CommandTypeSetSpeed, Speed: 2})
	var notSupported ErrNotSupportedCommand
	require.True(t, errors.As(err, &notSupported))
	require.Equal(t, CommandTypeSetSpeed, notSupported.Type)
}

type failingInit struct{}

func (failingInit) Init(ctx context.Context, f *Filter) error {
	f.AddInput(ctx, "in")
	return errors.New("no way")
}

func (failingInit) Process(ctx context.Context, f *Filter) error {
	return nil
}

func TestInitFailure(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	f, err := New(ctx, root, failingInit{})
	require.Nil(t, f)
	var initErr ErrInitFailed
	require.True(t, errors.As(err, &initErr))
	require.Empty(t, root.Children())
	require.Equal(t, []*Filter{root}, root.runner.pending)
	root.Run(ctx)
}

func TestDumpStates(t *testing.T) {
	ctx := newTestContext(t)
	root := NewRoot(ctx)
	f, _ := newPassthrough(t, ctx, root)
	require.NotZero(t, f.GetObjectID())
	require.Zero(t, (*Filter)(nil).GetObjectID())
	require.NotEqual(t, root.GetObjectID(), f.GetObjectID())
	root.DumpStates(ctx)
}
