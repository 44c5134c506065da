package condition

import (
	"context"
	"fmt"
	"strings"

	"github.com/xaionaro-go/pinflow/frame"
)

type And []Condition

var _ Condition = (And)(nil)

func (s And) String() string {
	return join(s, "&")
}

func (s And) Match(ctx context.Context, f frame.Frame) bool {
	for _, item := range s {
		if !item.Match(ctx, f) {
			return false
		}
	}
	return true
}

type Or []Condition

var _ Condition = (Or)(nil)

func (s Or) String() string {
	return join(s, "|")
}

func (s Or) Match(ctx context.Context, f frame.Frame) bool {
	for _, item := range s {
		if item.Match(ctx, f) {
			return true
		}
	}
	return false
}

func join(conds []Condition, sep string) string {
	result := make([]string, 0, len(conds))
	for _, cond := range conds {
		result = append(result, cond.String())
	}
	return fmt.Sprintf("(%s)", strings.Join(result, sep))
}

type Not struct {
	Condition Condition
}

var _ Condition = Not{}

func (n Not) String() string {
	return fmt.Sprintf("Not(%s)", n.Condition)
}

func (n Not) Match(ctx context.Context, f frame.Frame) bool {
	return !n.Condition.Match(ctx, f)
}

type Static bool

var _ Condition = (Static)(false)

func (v Static) String() string {
	return fmt.Sprintf("%t", bool(v))
}

func (v Static) Match(context.Context, frame.Frame) bool {
	return bool(v)
}

type Function func(context.Context, frame.Frame) bool

var _ Condition = (Function)(nil)

func (fn Function) String() string {
	return fmt.Sprintf("<custom_function:%p>", fn)
}

func (fn Function) Match(ctx context.Context, f frame.Frame) bool {
	return fn(ctx, f)
}
