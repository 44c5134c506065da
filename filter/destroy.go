package filter

import (
	"context"
	"slices"

	"github.com/xaionaro-go/pinflow/logger"
	"github.com/xaionaro-go/xsync"
)

// Destroy destroys the filter: calls the Destroy of the implementation,
// destroys the children, removes (and so disconnects) all the pins and
// detaches the filter from the graph. Destroying a destroyed filter is a no-op.
func (f *Filter) Destroy(ctx context.Context) {
	if f.IsDestroyed() {
		return
	}
	logger.Debugf(ctx, "Destroy(%s)", f)
	defer func() { logger.Debugf(ctx, "/Destroy(%s)", f) }()

	if destroyer, ok := f.impl.(Destroyer); ok {
		destroyer.Destroy(ctx, f)
	}

	f.DestroyChildren(ctx)

	for len(f.ppins) > 0 {
		f.removePinAt(ctx, 0)
	}

	r := f.runner
	r.asyncLocker.Do(xsync.WithNoLogging(ctx, true), func() {
		f.isDestroyed.Store(true)
	})
	r.flushAsync(ctx)
	r.removePending(f)

	if parent := f.parent; parent != nil {
		if idx := slices.Index(parent.children, f); idx >= 0 {
			parent.children = slices.Delete(parent.children, idx, idx+1)
		}
	}
}

// DestroyChildren destroys all the children of the filter.
func (f *Filter) DestroyChildren(ctx context.Context) {
	for len(f.children) > 0 {
		child := f.children[0]
		child.Destroy(ctx)
		assert(ctx, len(f.children) == 0 || f.children[0] != child, "the child was not detached", child)
	}
}
