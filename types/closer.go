package types

import (
	"context"
)

// Closer is implemented by handles (like async queues) that must be released
// by their users.
type Closer interface {
	Close(context.Context) error
}
