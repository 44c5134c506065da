package isolate

import (
	"context"
	"errors"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/logger"
)

type payload struct {
	id     int
	tagged bool
}

func (p *payload) ApproxSize() uint64 { return 1 }

// tagger marks the frames passing through, and fails on frame #2.
type tagger struct {
	in  *filter.OutPin
	out *filter.InPin
}

func (t *tagger) Init(ctx context.Context, f *filter.Filter) error {
	t.in = f.AddInput(ctx, "in")
	t.out = f.AddOutput(ctx, "out")
	return nil
}

func (t *tagger) Process(ctx context.Context, f *filter.Filter) error {
	if !filter.CanTransferData(ctx, t.out, t.in) {
		return nil
	}
	fr := t.in.Read(ctx)
	p := fr.Payload().(*payload)
	if p.id == 2 {
		fr.Unref()
		return errors.New("frame #2 is not supported")
	}
	p.tagged = true
	t.out.Write(ctx, fr)
	return nil
}

func (t *tagger) Command(ctx context.Context, f *filter.Filter, cmd *filter.Command) error {
	if cmd.Type != filter.CommandTypeGetMeta {
		return filter.ErrNotSupportedCommand{Type: cmd.Type}
	}
	cmd.Meta = map[string]string{"tagger": "yes"}
	return nil
}

func TestIsolate(t *testing.T) {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)

	root := filter.NewRoot(ctx)
	f, err := New(ctx, root, func(ctx context.Context, parent *filter.Filter) (*filter.Filter, error) {
		return filter.New(ctx, parent, &tagger{}, filter.OptionName("tagger"))
	})
	require.NoError(t, err)
	require.Equal(t, "isolate", f.Name())
	require.Equal(t, "isolate(tagger)", f.Implementation().(*Isolate).String())
	w := f.Implementation().(*Isolate)

	cmd := &filter.Command{Type: filter.CommandTypeGetMeta}
	require.NoError(t, f.Command(ctx, cmd))
	require.Equal(t, "yes", cmd.Meta["tagger"])

	in, out := f.Input(0), f.Output(1)
	type result struct {
		id     int
		tagged bool
	}
	var results []result
	collect := func(fr frame.Frame) {
		if fr.IsNone() {
			return
		}
		p := fr.Payload().(*payload)
		results = append(results, result{id: p.id, tagged: p.tagged})
		fr.Unref()
	}
	for id := 1; id <= 3; id++ {
		collect(out.Read(ctx))
		require.True(t, in.NeedsData(ctx))
		require.True(t, in.Write(ctx, frame.New(frame.KindCustom, &payload{id: id})))
		collect(out.Read(ctx))
	}

	require.Equal(t, []result{{id: 1, tagged: true}, {id: 3, tagged: false}}, results)
	require.True(t, w.HasFailed())
	require.Empty(t, root.TakeUnhandledFailures(ctx))

	cmd = &filter.Command{Type: filter.CommandTypeIsActive}
	require.NoError(t, f.Command(ctx, cmd))
	require.False(t, cmd.IsActive)
	var notSupported filter.ErrNotSupportedCommand
	require.ErrorAs(t, f.Command(ctx, &filter.Command{Type: filter.CommandTypeGetMeta}), &notSupported)
}

func TestIsolateBuildFailure(t *testing.T) {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)

	root := filter.NewRoot(ctx)
	errNope := errors.New("nope")
	_, err := New(ctx, root, func(ctx context.Context, parent *filter.Filter) (*filter.Filter, error) {
		return nil, errNope
	})
	require.ErrorIs(t, err, errNope)
	require.Empty(t, root.Children())
}
