package filter

import (
	"context"

	"github.com/xaionaro-go/pinflow/frame"
	"github.com/xaionaro-go/pinflow/logger"
)

// NeedsData returns true if the reading side of the connection has requested
// a frame, which means Write will succeed.
func (p *InPin) NeedsData(ctx context.Context) bool {
	assert(ctx, !p.withinConn, "the pin is in the middle of a connection", p)
	return p.conn != nil && p.conn.manualConn != nil && p.conn.dataRequested
}

// Write passes the ownership of the frame to the connection. The frame is
// accepted only if NeedsData is true; otherwise it is dropped (with an error
// message if it carried anything) and false is returned.
func (p *InPin) Write(ctx context.Context, f frame.Frame) bool {
	if !p.NeedsData(ctx) || f.IsNone() {
		if !f.IsNone() {
			logger.Errorf(ctx, "losing frame %s on %s", f, p)
			p.owner.Counters.Missed.Increment(f.Kind, f.ApproxSize())
		}
		f.Unref()
		return false
	}
	logger.Tracef(ctx, "Write(%s): %s", p, f)
	end := p.conn
	assert(ctx, end.data.IsNone(), "the connection already has a frame buffered", p, end.data)
	if p.isPrivate {
		p.owner.Counters.Sent.Increment(f.Kind, f.ApproxSize())
	}
	end.data = f
	end.dataRequested = false
	addPendingPin(ctx, end)
	driveFromExternalAccess(ctx, p.base())
	return true
}

// HasData returns true if a frame is buffered; it never requests anything.
func (p *OutPin) HasData(ctx context.Context) bool {
	assert(ctx, !p.withinConn, "the pin is in the middle of a connection", p)
	return p.conn != nil && p.conn.manualConn != nil && !p.data.IsNone()
}

// RequestData returns true if a frame is available for Read. If not, it asks
// the writing side to produce one (waking it up only once per request).
func (p *OutPin) RequestData(ctx context.Context) bool {
	if p.HasData(ctx) {
		return true
	}
	if p.conn != nil && p.conn.manualConn != nil {
		if !p.dataRequested {
			logger.Tracef(ctx, "RequestData(%s)", p)
			p.dataRequested = true
			addPendingPin(ctx, p.conn)
		}
		driveFromExternalAccess(ctx, p.base())
	}
	return p.HasData(ctx)
}

// RequestDataNext is RequestData, but if a frame is already available it
// also wakes the writing side again, so it is able to pipeline the next frame.
func (p *OutPin) RequestDataNext(ctx context.Context) {
	if p.RequestData(ctx) {
		addPendingPin(ctx, p.conn)
	}
}

// Read takes the buffered frame; it returns frame.None if nothing is
// available yet (in which case a frame is requested). Read never requests the
// next frame after a successful read.
func (p *OutPin) Read(ctx context.Context) frame.Frame {
	if !p.RequestData(ctx) {
		return frame.None
	}
	f := p.data
	p.data = frame.None
	if p.isPrivate {
		p.owner.Counters.Received.Increment(f.Kind, f.ApproxSize())
	}
	logger.Tracef(ctx, "Read(%s): %s", p, f)
	return f
}

// Unread puts back the frame returned by the immediately preceding Read.
// Nothing else may be done with the pin in between.
func (p *OutPin) Unread(ctx context.Context, f frame.Frame) {
	assert(ctx, !p.withinConn, "the pin is in the middle of a connection", p)
	assert(ctx, p.conn != nil && p.conn.manualConn != nil, "the pin is not connected", p)
	assert(ctx, !p.HasData(ctx), "the pin already has data, Unread must follow a Read", p)
	assert(ctx, !p.dataRequested, "the pin already requested data, Unread must follow a Read", p)
	p.data = f
}

// RepeatEOF makes the next Read return EOF again; it is used to emit the
// internally buffered data before forwarding an end of stream.
func (p *OutPin) RepeatEOF(ctx context.Context) {
	p.Unread(ctx, frame.EOF())
}

// CanTransferData returns true if a frame may be moved from src to dst right
// now (requesting one from src if dst needs it).
func CanTransferData(ctx context.Context, dst *InPin, src *OutPin) bool {
	return dst.NeedsData(ctx) && src.RequestData(ctx)
}

// TransferData moves a frame from src to dst if CanTransferData.
func TransferData(ctx context.Context, dst *InPin, src *OutPin) bool {
	if !CanTransferData(ctx, dst, src) {
		return false
	}
	dst.Write(ctx, src.Read(ctx))
	return true
}
