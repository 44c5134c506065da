package condition

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/frame"
)

type Kind frame.Kind

var _ Condition = (Kind)(0)

func (k Kind) String() string {
	return fmt.Sprintf("Kind(%s)", frame.Kind(k))
}

func (k Kind) Match(_ context.Context, f frame.Frame) bool {
	return f.Kind == frame.Kind(k)
}

// IsSignaling matches frames carrying no payload but a stream event (EOF).
type IsSignaling struct{}

var _ Condition = IsSignaling{}

func (IsSignaling) String() string {
	return "IsSignaling"
}

func (IsSignaling) Match(_ context.Context, f frame.Frame) bool {
	return f.IsSignaling()
}
