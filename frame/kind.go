package frame

import (
	"github.com/xaionaro-go/pinflow/types"
)

// Kind is the kind of a Frame.
type Kind = types.FrameKind

const (
	KindNone   = types.FrameKindNone
	KindEOF    = types.FrameKindEOF
	KindVideo  = types.FrameKindVideo
	KindAudio  = types.FrameKindAudio
	KindPacket = types.FrameKindPacket
	KindCustom = types.FrameKindCustom
)
