package types

import (
	"fmt"
)

// FrameKind is the kind of a frame travelling between filters.
type FrameKind int

const (
	// FrameKindNone is the "no frame" value.
	FrameKindNone = FrameKind(iota)
	FrameKindEOF
	FrameKindVideo
	FrameKindAudio
	FrameKindPacket
	FrameKindCustom
	EndOfFrameKind
)

func (k FrameKind) String() string {
	switch k {
	case FrameKindNone:
		return "none"
	case FrameKindEOF:
		return "eof"
	case FrameKindVideo:
		return "video"
	case FrameKindAudio:
		return "audio"
	case FrameKindPacket:
		return "packet"
	case FrameKindCustom:
		return "custom"
	default:
		return fmt.Sprintf("unknown_frame_kind_%d", int(k))
	}
}

// IsSignaling returns true for kinds that carry no payload and only
// signal something to the downstream (like end-of-stream).
func (k FrameKind) IsSignaling() bool {
	return k == FrameKindEOF
}

func (k FrameKind) HasPayload() bool {
	return k > FrameKindEOF && k < EndOfFrameKind
}
