// Package closuresignaler provides a one-shot "closed" broadcast for
// long-living loops (like graph threads).
package closuresignaler

import (
	"context"
	"sync"

	"github.com/xaionaro-go/pinflow/logger"
)

type ClosureSignaler struct {
	closeOnce sync.Once
	c         chan struct{}
}

func New() *ClosureSignaler {
	return &ClosureSignaler{
		c: make(chan struct{}),
	}
}

func (c *ClosureSignaler) CloseChan() <-chan struct{} {
	return c.c
}

// Close may be called any number of times; only the first call has effect.
// It returns true if this call was the one that closed the signaler.
func (c *ClosureSignaler) Close(ctx context.Context) (closed bool) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", closed) }()
	c.closeOnce.Do(func() {
		close(c.c)
		closed = true
	})
	return
}

func (c *ClosureSignaler) IsClosed() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}
