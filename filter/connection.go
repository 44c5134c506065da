package filter

import (
	"context"

	"github.com/xaionaro-go/pinflow/logger"
)

// findConnectedEnd follows the pin pairs and user connections starting from
// the pair of p, and returns the last pin of the chain (in the simplest case
// just p.other).
func findConnectedEnd(p *pin) *pin {
	for {
		other := p.other
		if other.userConn == nil {
			return other
		}
		p = other.userConn
	}
}

// initConnection resolves the chain p belongs to, if both of its ends have
// manual connections.
func initConnection(ctx context.Context, p *pin) {
	r := p.owner.runner

	if p.direction == DirectionIn {
		p = p.other
	}

	in := findConnectedEnd(p)
	out := findConnectedEnd(p.other)

	assert(ctx, in.userConn == nil, "the end of a chain has a user connection", in)
	assert(ctx, out.userConn == nil, "the end of a chain has a user connection", out)

	if in.manualConn != nil {
		assert(ctx, in.manualConn.runner == r, "connecting filters of different graphs", in, in.manualConn)
	}
	if out.manualConn != nil {
		assert(ctx, out.manualConn.runner == r, "connecting filters of different graphs", out, out.manualConn)
	}

	if in.manualConn == nil || out.manualConn == nil {
		logger.Tracef(ctx, "initConnection(%s): dangling", p)
		return
	}

	assert(ctx, in.direction == DirectionIn, in)
	assert(ctx, out.direction == DirectionOut, out)

	for cur := in; cur != nil; cur = cur.other.userConn {
		assert(ctx, !cur.withinConn && !cur.other.withinConn, "the pin is already a part of a connection", cur)
		assert(ctx, cur.conn == nil && cur.other.conn == nil, "the pin is already connected", cur)
		assert(ctx, !cur.dataRequested && !cur.other.dataRequested, "stale request on an unconnected pin", cur)
		assert(ctx, cur.data.IsNone() && cur.other.data.IsNone(), "stale data on an unconnected pin", cur)
		assert(ctx, cur.owner.runner == r, "connecting filters of different graphs", cur)
		cur.withinConn = true
		cur.other.withinConn = true
	}

	in.conn = out
	in.withinConn = false
	out.conn = in
	out.withinConn = false

	logger.Tracef(ctx, "initConnection: %s -> %s", in, out)

	// whatever was scheduled before does not know about the new connection
	addPending(ctx, in.manualConn)
	addPending(ctx, out.manualConn)
}

func deinitConnection(ctx context.Context, p *pin) {
	if p.direction == DirectionOut {
		p = p.other
	}

	for p = findConnectedEnd(p); p != nil; p = p.other.userConn {
		p.conn = nil
		p.other.conn = nil
		p.withinConn = false
		p.other.withinConn = false
		assert(ctx, !p.other.dataRequested, "a request on an In pin", p.other)
		assert(ctx, p.other.data.IsNone(), "data on an In pin", p.other)
		if !p.data.IsNone() {
			logger.Debugf(ctx, "dropping frame %s due to a disconnect of %s", p.data, p)
			p.owner.Counters.Missed.Increment(p.data.Kind, p.data.ApproxSize())
		}
		if p.dataRequested {
			logger.Debugf(ctx, "dropping the request due to a disconnect of %s", p)
		}
		p.dataRequested = false
		p.data.Unref()
	}
}

func (p *pin) disconnect(ctx context.Context) {
	if !p.isConnected() {
		return
	}
	logger.Tracef(ctx, "disconnect(%s)", p)

	p.manualConn = nil

	if conn := p.userConn; conn != nil {
		p.userConn = nil
		conn.userConn = nil
		deinitConnection(ctx, conn)
	}

	deinitConnection(ctx, p)
}

func (p *pin) setManualConnection(ctx context.Context, connected bool) {
	var owner *Filter
	if connected {
		owner = p.owner.parent
	}
	p.setManualConnectionFor(ctx, owner)
}

func (p *pin) setManualConnectionFor(ctx context.Context, f *Filter) {
	if p.manualConn == f {
		return
	}
	if p.withinConn || p.conn != nil {
		p.disconnect(ctx)
	}
	p.manualConn = f
	initConnection(ctx, p)
}

// Connect links src to dst, severing any previous connections of both.
// Connecting already linked pins is a no-op.
func Connect(ctx context.Context, dst *InPin, src *OutPin) {
	d, s := dst.base(), src.base()
	if d.userConn == s {
		assert(ctx, s.userConn == d, "asymmetric connection", s, d)
		return
	}

	s.disconnect(ctx)
	d.disconnect(ctx)

	s.userConn = d
	d.userConn = s

	initConnection(ctx, s)
}
