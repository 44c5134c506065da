// Package asyncqueue provides a bounded frame queue connecting two filter
// graphs driven by different goroutines.
//
// The queue gets two attachment filters: the producer (created with
// filter.DirectionIn, it accepts frames into the queue) and the consumer
// (created with filter.DirectionOut, it emits the queued frames), each
// belonging to its own graph. The attachments notify each other through
// filter.Wakeup, so the graphs must have wakeup functions set.
package asyncqueue

import (
	"context"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/internal"
	"github.com/xaionaro-go/pinflow/logger"
	"github.com/xaionaro-go/pinflow/types"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

const (
	slotProducer = 0
	slotConsumer = 1
)

// storage is shared by the user handle and the attachment filters, and is
// released when all of them are gone.
type storage struct {
	refs atomic.Int64

	locker xsync.Mutex

	cfg Config

	// active=false: no frames enter or leave the queue.
	active bool
	// reading=true: the consumer requested data, so the producer may push.
	reading bool

	samplesSize int64
	byteSize    int64
	eofCount    int

	// oldest first
	items []frame.Frame

	conn [2]*filter.Filter
}

// Queue is the user handle of a queue.
type Queue struct {
	q      *storage
	closed atomic.Bool
}

var _ types.Closer = (*Queue)(nil)

// New creates an empty inactive queue. Without SetConfig it is full with a
// single frame.
func New(ctx context.Context) *Queue {
	s := &storage{
		cfg: Config{}.Clamped(),
	}
	s.refs.Store(1)
	q := &Queue{q: s}
	internal.SetFinalizer(ctx, q, func(ctx context.Context, q *Queue) {
		q.Close(ctx)
	})
	return q
}

func (s *storage) ref() {
	s.refs.Inc()
}

func (s *storage) unref(ctx context.Context) {
	refs := s.refs.Dec()
	internal.Assert(ctx, refs >= 0, "the queue is over-released", refs)
	if refs > 0 {
		return
	}
	logger.Debugf(ctx, "releasing the queue")
	s.locker.Do(ctx, func() {
		s.clearLocked()
	})
}

// Close releases the user handle. The queue itself lives while any of its
// attachment filters exists.
func (q *Queue) Close(ctx context.Context) error {
	if !q.closed.CompareAndSwap(false, true) {
		return nil
	}
	q.q.unref(ctx)
	return nil
}

func (s *storage) frameSamples(f frame.Frame) int64 {
	if f.IsSignaling() {
		return 0
	}
	if s.cfg.SampleUnit == SampleUnitSamples {
		if samples, ok := f.SampleCount(); ok {
			return samples
		}
	}
	return 1
}

func (s *storage) accountLocked(ctx context.Context, f frame.Frame, dir int64) {
	s.samplesSize += dir * s.frameSamples(f)
	s.byteSize += dir * int64(f.ApproxSize())
	if f.Kind == frame.KindEOF {
		s.eofCount += int(dir)
	}
	internal.Assert(ctx, s.samplesSize >= 0 && s.byteSize >= 0 && s.eofCount >= 0,
		"negative queue accounting", s.samplesSize, s.byteSize, s.eofCount)
}

func (s *storage) recomputeSizesLocked(ctx context.Context) {
	s.samplesSize = 0
	s.byteSize = 0
	s.eofCount = 0
	for _, f := range s.items {
		s.accountLocked(ctx, f, 1)
	}
}

func (s *storage) isFullLocked() bool {
	if s.samplesSize >= s.cfg.MaxSamples || s.byteSize >= s.cfg.MaxBytes {
		return true
	}
	if len(s.items) >= 2 && s.cfg.MaxDuration > 0 {
		oldest := s.items[0].PTS()
		newest := s.items[len(s.items)-1].PTS()
		if oldest.IsSet() && newest.IsSet() && newest.Get()-oldest.Get() >= s.cfg.MaxDuration {
			return true
		}
	}
	return false
}

func (s *storage) wakeupLocked(ctx context.Context, slot int) {
	if f := s.conn[slot]; f != nil {
		f.Wakeup(ctx)
	}
}

func (s *storage) clearLocked() {
	for idx := range s.items {
		s.items[idx].Unref()
	}
	s.items = s.items[:0]
	s.samplesSize = 0
	s.byteSize = 0
	s.eofCount = 0
}

// SetConfig sets the limits (clamped, see Config.Clamped).
func (q *Queue) SetConfig(ctx context.Context, cfg Config) {
	cfg = cfg.Clamped()
	logger.Debugf(ctx, "SetConfig: %s", spew.Sdump(cfg))
	s := q.q
	s.locker.Do(ctx, func() {
		recompute := s.cfg.SampleUnit != cfg.SampleUnit
		s.cfg = cfg
		if recompute {
			s.recomputeSizesLocked(ctx)
		}
		// the limits might have changed
		s.wakeupLocked(ctx, slotProducer)
		s.wakeupLocked(ctx, slotConsumer)
	})
}

func (q *Queue) Config(ctx context.Context) Config {
	return xsync.DoR1(ctx, &q.q.locker, func() Config {
		return q.q.cfg
	})
}

// Reset drops all the queued frames and deactivates the queue.
func (q *Queue) Reset(ctx context.Context) {
	logger.Debugf(ctx, "Reset")
	s := q.q
	s.locker.Do(ctx, func() {
		s.clearLocked()
		s.active = false
		s.reading = false
		s.wakeupLocked(ctx, slotProducer)
		s.wakeupLocked(ctx, slotConsumer)
	})
}

// Resume activates the queue: the consumer will start requesting frames as
// soon as something requests frames from it.
func (q *Queue) Resume(ctx context.Context) {
	s := q.q
	s.locker.Do(ctx, func() {
		if s.active {
			return
		}
		s.active = true
		s.wakeupLocked(ctx, slotConsumer)
	})
}

// ResumeReading is Resume, but the producer starts accepting frames
// immediately, without waiting for the consumer to request anything.
func (q *Queue) ResumeReading(ctx context.Context) {
	s := q.q
	s.locker.Do(ctx, func() {
		if s.active && s.reading {
			return
		}
		s.active = true
		s.reading = true
		s.wakeupLocked(ctx, slotProducer)
		s.wakeupLocked(ctx, slotConsumer)
	})
}

func (q *Queue) IsActive(ctx context.Context) bool {
	return xsync.DoR1(ctx, &q.q.locker, func() bool {
		return q.q.active
	})
}

func (q *Queue) IsFull(ctx context.Context) bool {
	return xsync.DoR1(ctx, &q.q.locker, q.q.isFullLocked)
}

// Samples returns the queue size in the configured SampleUnit.
func (q *Queue) Samples(ctx context.Context) int64 {
	return xsync.DoR1(ctx, &q.q.locker, func() int64 {
		return q.q.samplesSize
	})
}

// Bytes returns the sum of approximate sizes of the queued frames.
func (q *Queue) Bytes(ctx context.Context) int64 {
	return xsync.DoR1(ctx, &q.q.locker, func() int64 {
		return q.q.byteSize
	})
}

// Count returns the amount of queued frames (including signaling ones).
func (q *Queue) Count(ctx context.Context) int {
	return xsync.DoR1(ctx, &q.q.locker, func() int {
		return len(q.q.items)
	})
}

// EOFCount returns the amount of queued end-of-stream frames.
func (q *Queue) EOFCount(ctx context.Context) int {
	return xsync.DoR1(ctx, &q.q.locker, func() int {
		return q.q.eofCount
	})
}

func (s *storage) popLocked(ctx context.Context) frame.Frame {
	f := s.items[0]
	s.items = slices.Delete(s.items, 0, 1)
	s.accountLocked(ctx, f, -1)
	return f
}
