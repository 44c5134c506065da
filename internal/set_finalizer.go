package internal

import (
	"context"
	"runtime"

	"github.com/xaionaro-go/pinflow/logger"
)

// SetFinalizer makes sure callback is called when obj becomes unreachable,
// for objects whose owners are allowed to forget releasing them.
func SetFinalizer[T any](
	ctx context.Context,
	obj *T,
	callback func(ctx context.Context, in *T),
) {
	runtime.SetFinalizer(obj, func(in *T) {
		logger.Debugf(ctx, "finalizing %T", in)
		callback(ctx, in)
	})
}
