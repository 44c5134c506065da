package frame

import (
	"time"
	"unsafe"

	"github.com/xaionaro-go/typing"
)

type Video struct {
	Buffer    *Buffer
	Width     int
	Height    int
	Timestamp typing.Optional[time.Duration]
}

var (
	_ Payload   = (*Video)(nil)
	_ PTSGetter = (*Video)(nil)
	_ Cloner    = (*Video)(nil)
	_ Freer     = (*Video)(nil)
)

func (v *Video) ApproxSize() uint64 {
	return uint64(unsafe.Sizeof(*v)) + uint64(v.Buffer.Len())
}

func (v *Video) PTS() typing.Optional[time.Duration] {
	return v.Timestamp
}

func (v *Video) Clone() Payload {
	cpy := *v
	cpy.Buffer = CloneBuffer(v.Buffer)
	return &cpy
}

func (v *Video) Free() {
	v.Buffer.Release()
	v.Buffer = nil
}

type Audio struct {
	Buffer     *Buffer
	SampleRate int
	Channels   int
	Samples    int64
	Timestamp  typing.Optional[time.Duration]
}

var (
	_ Payload       = (*Audio)(nil)
	_ PTSGetter     = (*Audio)(nil)
	_ SampleCounter = (*Audio)(nil)
	_ Cloner        = (*Audio)(nil)
	_ Freer         = (*Audio)(nil)
)

func (a *Audio) ApproxSize() uint64 {
	return uint64(unsafe.Sizeof(*a)) + uint64(a.Buffer.Len())
}

func (a *Audio) PTS() typing.Optional[time.Duration] {
	return a.Timestamp
}

func (a *Audio) SampleCount() int64 {
	return a.Samples
}

func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(a.Samples) * time.Second / time.Duration(a.SampleRate)
}

func (a *Audio) Clone() Payload {
	cpy := *a
	cpy.Buffer = CloneBuffer(a.Buffer)
	return &cpy
}

func (a *Audio) Free() {
	a.Buffer.Release()
	a.Buffer = nil
}

// Packet is a chunk of still-encoded data.
type Packet struct {
	Buffer      *Buffer
	StreamIndex int
	Timestamp   typing.Optional[time.Duration]
}

var (
	_ Payload   = (*Packet)(nil)
	_ PTSGetter = (*Packet)(nil)
	_ Cloner    = (*Packet)(nil)
	_ Freer     = (*Packet)(nil)
)

func (p *Packet) ApproxSize() uint64 {
	return uint64(unsafe.Sizeof(*p)) + uint64(p.Buffer.Len())
}

func (p *Packet) PTS() typing.Optional[time.Duration] {
	return p.Timestamp
}

func (p *Packet) Clone() Payload {
	cpy := *p
	cpy.Buffer = CloneBuffer(p.Buffer)
	return &cpy
}

func (p *Packet) Free() {
	p.Buffer.Release()
	p.Buffer = nil
}
