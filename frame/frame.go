// Package frame defines the unit of data passed between filters.
//
// A Frame is a value, but it owns a reference to its payload: passing a Frame
// somewhere moves the ownership (the sender must not use it anymore), Ref
// produces an independent Frame sharing the same payload, and Unref releases
// the reference.
package frame

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xaionaro-go/typing"
	"go.uber.org/atomic"
)

var ErrNotClonable = errors.New("the payload is shared and does not implement Cloner")

type shared struct {
	payload Payload
	refs    atomic.Int64
}

type Frame struct {
	Kind   Kind
	shared *shared
}

// None is the "no frame" value; it is never queued.
var None = Frame{Kind: KindNone}

func EOF() Frame {
	return Frame{Kind: KindEOF}
}

// New wraps payload into a Frame holding the only reference to it.
func New(kind Kind, payload Payload) Frame {
	if !kind.HasPayload() {
		panic(fmt.Errorf("frame kind %s cannot carry a payload", kind))
	}
	if payload == nil {
		panic(fmt.Errorf("a frame of kind %s requires a payload", kind))
	}
	s := &shared{payload: payload}
	s.refs.Store(1)
	return Frame{Kind: kind, shared: s}
}

func (f Frame) IsNone() bool {
	return f.Kind == KindNone
}

func (f Frame) IsSignaling() bool {
	return f.Kind.IsSignaling()
}

func (f Frame) Payload() Payload {
	if f.shared == nil {
		return nil
	}
	return f.shared.payload
}

// Ref returns a new Frame sharing the payload with f.
func (f Frame) Ref() Frame {
	if f.shared != nil {
		f.shared.refs.Inc()
	}
	return f
}

// Unref releases the reference held by f (freeing the payload if it was the
// last one) and turns f into None.
func (f *Frame) Unref() {
	if s := f.shared; s != nil {
		switch refs := s.refs.Dec(); {
		case refs == 0:
			if freer, ok := s.payload.(Freer); ok {
				freer.Free()
			}
		case refs < 0:
			panic(fmt.Errorf("frame %p is over-released", s))
		}
	}
	*f = None
}

func (f Frame) IsWritable() bool {
	return f.shared == nil || f.shared.refs.Load() == 1
}

// MakeWritable makes sure f holds the only reference to its payload,
// cloning the payload if it is shared.
func (f *Frame) MakeWritable() error {
	if f.IsWritable() {
		return nil
	}
	cloner, ok := f.shared.payload.(Cloner)
	if !ok {
		return ErrNotClonable
	}
	cpy := New(f.Kind, cloner.Clone())
	f.Unref()
	*f = cpy
	return nil
}

func (f Frame) PTS() typing.Optional[time.Duration] {
	if getter, ok := f.Payload().(PTSGetter); ok {
		return getter.PTS()
	}
	return typing.Optional[time.Duration]{}
}

// SampleCount returns the amount of audio samples in the frame,
// the second value is false if the payload does not count samples.
func (f Frame) SampleCount() (int64, bool) {
	if counter, ok := f.Payload().(SampleCounter); ok {
		return counter.SampleCount(), true
	}
	return 0, false
}

func (f Frame) ApproxSize() uint64 {
	if p := f.Payload(); p != nil {
		return p.ApproxSize()
	}
	return 0
}

func (f Frame) String() string {
	if f.shared == nil {
		return f.Kind.String()
	}
	pts := f.PTS()
	if pts.IsSet() {
		return fmt.Sprintf("%s(%s, pts:%v)", f.Kind, humanize.Bytes(f.ApproxSize()), pts.Get())
	}
	return fmt.Sprintf("%s(%s)", f.Kind, humanize.Bytes(f.ApproxSize()))
}
