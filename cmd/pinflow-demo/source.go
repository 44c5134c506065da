package main

import (
	"context"
	"time"

	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/typing"
)

// source generates video frames of the given size and then an EOF.
type source struct {
	out       *filter.InPin
	next      int
	total     int
	frameSize int
	interval  time.Duration
}

var _ filter.Abstract = (*source)(nil)

func (s *source) String() string {
	return "source"
}

func (s *source) Init(ctx context.Context, f *filter.Filter) error {
	s.out = f.AddOutput(ctx, "out")
	return nil
}

func (s *source) Process(ctx context.Context, f *filter.Filter) error {
	if !s.out.NeedsData(ctx) {
		return nil
	}
	switch {
	case s.next < s.total:
		buf := frame.GetBuffer(s.frameSize)
		for idx := range buf.Data {
			buf.Data[idx] = byte(s.next)
		}
		s.out.Write(ctx, frame.New(frame.KindVideo, &frame.Video{
			Buffer:    buf,
			Width:     s.frameSize,
			Height:    1,
			Timestamp: typing.Opt(time.Duration(s.next) * s.interval),
		}))
	case s.next == s.total:
		s.out.Write(ctx, frame.EOF())
	default:
		return nil
	}
	s.next++
	return nil
}
