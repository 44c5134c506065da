package internal

import (
	"context"

	"github.com/xaionaro-go/pinflow/logger"
)

// Assert panics (through the logger, so the context fields are reported) if
// mustBeTrue is false. It is used for violations of the pin/filter contracts,
// which are bugs in the calling code rather than runtime conditions.
func Assert(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Panic(ctx, "assertion failed", extraArgs)
}

// AssertSoft is like Assert, but only reports the problem.
func AssertSoft(
	ctx context.Context,
	mustBeTrue bool,
	extraArgs ...any,
) {
	if mustBeTrue {
		return
	}

	logger.Error(ctx, "soft assertion failed", extraArgs)
}
