package main

import (
	"context"

	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/logger"
)

// sink consumes everything and closes eof when the end of stream arrives.
type sink struct {
	in  *filter.OutPin
	eof chan struct{}
}

var _ filter.Abstract = (*sink)(nil)

func (s *sink) String() string {
	return "sink"
}

func (s *sink) Init(ctx context.Context, f *filter.Filter) error {
	s.in = f.AddInput(ctx, "in")
	return nil
}

func (s *sink) Process(ctx context.Context, f *filter.Filter) error {
	for s.in.RequestData(ctx) {
		in := s.in.Read(ctx)
		logger.Tracef(ctx, "received %s", in)
		if in.Kind == frame.KindEOF {
			close(s.eof)
			return nil
		}
		in.Unref()
	}
	return nil
}
