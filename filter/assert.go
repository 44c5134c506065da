package filter

import (
	"context"

	"github.com/xaionaro-go/pinflow/internal"
)

func assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	internal.Assert(ctx, mustBeTrue, extraArgs...)
}

func assertSoft(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	internal.AssertSoft(ctx, mustBeTrue, extraArgs...)
}
