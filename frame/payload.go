package frame

import (
	"time"

	"github.com/xaionaro-go/typing"
)

// Payload is the data carried by a non-signaling Frame.
type Payload interface {
	// ApproxSize is used for queue accounting and statistics only.
	ApproxSize() uint64
}

type PTSGetter interface {
	PTS() typing.Optional[time.Duration]
}

// SampleCounter is implemented by audio payloads; queues configured to
// account in samples use it.
type SampleCounter interface {
	SampleCount() int64
}

// Cloner is required for MakeWritable on a shared payload.
type Cloner interface {
	Clone() Payload
}

// Freer is called when the last reference to a payload is dropped.
type Freer interface {
	Free()
}
