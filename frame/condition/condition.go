// Package condition provides composable frame predicates.
package condition

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/frame"
)

type Condition interface {
	fmt.Stringer
	Match(context.Context, frame.Frame) bool
}
