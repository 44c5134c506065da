package filter

import (
	"fmt"
)

// Direction is the direction of a pin as seen from outside of the filter
// owning it: users write into In pins and read from Out pins.
type Direction int

const (
	DirectionIn = Direction(iota)
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return fmt.Sprintf("unknown_direction_%d", int(d))
	}
}

func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// Arrow is used in state dumps.
func (d Direction) Arrow() string {
	if d == DirectionIn {
		return "->"
	}
	return "<-"
}
