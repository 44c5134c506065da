package filter

import (
	"fmt"
)

type CommandType int

const (
	UndefinedCommandType = CommandType(iota)
	CommandTypeText
	CommandTypeGetMeta
	CommandTypeSetSpeed
	CommandTypeSetSpeedResample
	CommandTypeIsActive
)

func (t CommandType) String() string {
	switch t {
	case UndefinedCommandType:
		return "<undefined>"
	case CommandTypeText:
		return "text"
	case CommandTypeGetMeta:
		return "get_meta"
	case CommandTypeSetSpeed:
		return "set_speed"
	case CommandTypeSetSpeedResample:
		return "set_speed_resample"
	case CommandTypeIsActive:
		return "is_active"
	default:
		return fmt.Sprintf("unknown_command_type_%d", int(t))
	}
}

// Command is a synchronous request to a filter. Only the fields related to
// the Type are used; the filter may write the reply into the same structure
// (Meta and IsActive are reply fields).
type Command struct {
	Type CommandType

	// CommandTypeText
	Cmd string
	Arg string

	// CommandTypeGetMeta (reply)
	Meta map[string]string

	// CommandTypeSetSpeed, CommandTypeSetSpeedResample
	Speed float64

	// CommandTypeIsActive (reply)
	IsActive bool
}
