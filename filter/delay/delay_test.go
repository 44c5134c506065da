package delay

import (
	"context"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/logger"
)

type payload struct {
	id int
}

func (p *payload) ApproxSize() uint64 { return 1 }

func describe(f frame.Frame) string {
	switch {
	case f.IsNone():
		return "none"
	case f.IsSignaling():
		return f.Kind.String()
	default:
		return string(rune('A' + f.Payload().(*payload).id))
	}
}

func TestDelayEOFRepeat(t *testing.T) {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)

	root := filter.NewRoot(ctx)
	f, err := New(ctx, root)
	require.NoError(t, err)
	in, out := f.Input(0), f.Output(1)

	var result []string
	step := func(input frame.Frame) {
		result = append(result, describe(out.Read(ctx)))
		require.True(t, in.NeedsData(ctx))
		require.True(t, in.Write(ctx, input))
		result = append(result, describe(out.Read(ctx)))
		for i := 0; i < 3; i++ {
			root.Run(ctx)
		}
	}

	step(frame.New(frame.KindCustom, &payload{id: 0}))
	step(frame.New(frame.KindCustom, &payload{id: 1}))
	step(frame.EOF())
	for i := 0; i < 3; i++ {
		result = append(result, describe(out.Read(ctx)))
		root.Run(ctx)
	}

	require.Equal(t, []string{
		"none", "none",
		"none", "A",
		"none", "B",
		"eof", "none", "none",
	}, result)
}

func TestDelayReset(t *testing.T) {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)

	root := filter.NewRoot(ctx)
	f, err := New(ctx, root)
	require.NoError(t, err)
	in, out := f.Input(0), f.Output(1)

	require.True(t, out.Read(ctx).IsNone())
	require.True(t, in.Write(ctx, frame.New(frame.KindCustom, &payload{id: 0})))
	f.Reset(ctx)

	// the buffered frame is gone, so the EOF goes through immediately
	require.True(t, out.Read(ctx).IsNone())
	require.True(t, in.Write(ctx, frame.EOF()))
	require.Equal(t, frame.KindEOF, out.Read(ctx).Kind)
}
