package asyncqueue

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/filter"
	"github.com/xaionaro-go/pinflow/internal"
	"github.com/xaionaro-go/pinflow/logger"
	"github.com/xaionaro-go/xsync"
)

type attachment struct {
	q    *storage
	slot int
}

func (a *attachment) init(ctx context.Context, f *filter.Filter) {
	occupied := xsync.DoR1(ctx, &a.q.locker, func() bool {
		if a.q.conn[a.slot] != nil {
			return true
		}
		a.q.conn[a.slot] = f
		return false
	})
	internal.Assert(ctx, !occupied, "the queue already has a filter attached on this side", f)
	a.q.ref()
}

func (a *attachment) Destroy(ctx context.Context, f *filter.Filter) {
	a.q.locker.Do(ctx, func() {
		if a.q.conn[a.slot] == f {
			a.q.conn[a.slot] = nil
		}
	})
	a.q.unref(ctx)
}

// producer accepts frames into the queue.
type producer struct {
	attachment
	in     *filter.OutPin
	notify *filter.Filter
}

var (
	_ filter.Abstract  = (*producer)(nil)
	_ filter.Resetter  = (*producer)(nil)
	_ filter.Destroyer = (*producer)(nil)
)

func (p *producer) String() string {
	return "asyncqueue_in"
}

func (p *producer) Init(ctx context.Context, f *filter.Filter) error {
	p.in = f.AddInput(ctx, "in")
	p.init(ctx, f)
	return nil
}

func (p *producer) Process(ctx context.Context, f *filter.Filter) error {
	q := p.q
	q.locker.Do(xsync.WithNoLogging(ctx, true), func() {
		internal.Assert(ctx, q.conn[slotProducer] == f)

		switch {
		case !q.reading:
			// the queue might have been reset after the request was made
			if p.in.HasData(ctx) {
				discarded := p.in.Read(ctx)
				logger.Debugf(ctx, "discarding frame %s due to async reset", discarded)
				discarded.Unref()
			}
		case !q.isFullLocked() && p.in.RequestData(ctx):
			in := p.in.Read(ctx)
			q.accountLocked(ctx, in, 1)
			q.items = append(q.items, in)
			q.wakeupLocked(ctx, slotConsumer)
			full := q.isFullLocked()
			if !full {
				p.in.RequestDataNext(ctx)
			}
			if full && p.notify != nil {
				p.notify.Wakeup(ctx)
			}
		}

		if len(q.items) == 0 && p.notify != nil {
			p.notify.Wakeup(ctx)
		}
	})
	return nil
}

func (p *producer) Reset(ctx context.Context, f *filter.Filter) {
	p.q.locker.Do(ctx, func() {
		// a reading queue wants input right away
		if p.q.reading {
			f.Wakeup(ctx)
		}
	})
}

// consumer emits the queued frames.
type consumer struct {
	attachment
	out *filter.InPin
}

var (
	_ filter.Abstract  = (*consumer)(nil)
	_ filter.Destroyer = (*consumer)(nil)
)

func (c *consumer) String() string {
	return "asyncqueue_out"
}

func (c *consumer) Init(ctx context.Context, f *filter.Filter) error {
	c.out = f.AddOutput(ctx, "out")
	c.init(ctx, f)
	return nil
}

func (c *consumer) Process(ctx context.Context, f *filter.Filter) error {
	if !c.out.NeedsData(ctx) {
		return nil
	}

	q := c.q
	q.locker.Do(xsync.WithNoLogging(ctx, true), func() {
		internal.Assert(ctx, q.conn[slotConsumer] == f)

		if q.active && !q.reading {
			q.reading = true
			q.wakeupLocked(ctx, slotProducer)
		}
		if q.active && len(q.items) > 0 {
			c.out.Write(ctx, q.popLocked(ctx))
			q.wakeupLocked(ctx, slotProducer)
		}
	})
	return nil
}

// NewFilter creates an attachment filter of the queue in the graph of
// parent: the producer for filter.DirectionIn (with a single "in" pin) or the
// consumer for filter.DirectionOut (with a single "out" pin). A queue may
// have only one attachment of each kind at a time.
func (q *Queue) NewFilter(
	ctx context.Context,
	parent *filter.Filter,
	dir filter.Direction,
	opts ...filter.Option,
) (*filter.Filter, error) {
	var impl filter.Abstract
	switch dir {
	case filter.DirectionIn:
		impl = &producer{attachment: attachment{q: q.q, slot: slotProducer}}
	case filter.DirectionOut:
		impl = &consumer{attachment: attachment{q: q.q, slot: slotConsumer}}
	default:
		return nil, fmt.Errorf("unknown direction: %v", dir)
	}
	return filter.New(ctx, parent, impl, opts...)
}

// SetNotifier makes notify woken up whenever the queue becomes full or empty
// (as seen by the producer filter f).
func SetNotifier(ctx context.Context, f *filter.Filter, notify *filter.Filter) {
	p, ok := f.Implementation().(*producer)
	internal.Assert(ctx, ok, "the filter is not a producer of an async queue", f)
	if p.notify == notify {
		return
	}
	p.notify = notify
	if notify != nil {
		notify.Wakeup(ctx)
	}
}
