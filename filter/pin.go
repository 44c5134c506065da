package filter

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/pinflow/frame"
)

// pin is one side of a pin pair. Every pin a filter declares is a pair: the
// public pin (seen by the users of the filter) and the private pin (seen by
// the filter itself), with mirrored directions.
//
// Pins are linked by Connect (userConn). A chain of linked pairs collapses
// into one effective connection between its two end pins (conn), which are
// the only pins of the chain holding state: the Out end buffers the data and
// the request flag. Both ends must have a manual connection (the filter
// handling their state changes), otherwise the chain is not connected at all.
type pin struct {
	name      string
	direction Direction
	owner     *Filter
	other     *pin
	isPrivate bool

	userConn   *pin
	conn       *pin
	manualConn *Filter
	withinConn bool

	dataRequested bool
	data          frame.Frame
}

// InPin is a pin to write frames into.
type InPin pin

// OutPin is a pin to read frames from.
type OutPin pin

// Pin is either an *InPin or an *OutPin.
type Pin interface {
	fmt.Stringer
	Name() string
	Direction() Direction
	Owner() *Filter
	IsPrivate() bool
	IsConnected() bool
	ManualConnection() *Filter
	SetManualConnection(ctx context.Context, connected bool)
	SetManualConnectionFor(ctx context.Context, f *Filter)
	Disconnect(ctx context.Context)

	base() *pin
}

var (
	_ Pin = (*InPin)(nil)
	_ Pin = (*OutPin)(nil)
)

func (p *pin) typed() Pin {
	if p == nil {
		return nil
	}
	if p.direction == DirectionIn {
		return (*InPin)(p)
	}
	return (*OutPin)(p)
}

func (p *pin) String() string {
	side := "public"
	if p.isPrivate {
		side = "private"
	}
	return fmt.Sprintf("%s:%s(%s,%s)", p.owner, p.name, side, p.direction)
}

func (p *pin) isConnected() bool {
	return p.userConn != nil || p.manualConn != nil
}

func (p *InPin) base() *pin                { return (*pin)(p) }
func (p *InPin) String() string            { return p.base().String() }
func (p *InPin) Name() string              { return p.name }
func (p *InPin) Direction() Direction      { return DirectionIn }
func (p *InPin) Owner() *Filter            { return p.owner }
func (p *InPin) IsPrivate() bool           { return p.isPrivate }
func (p *InPin) IsConnected() bool         { return p.base().isConnected() }
func (p *InPin) ManualConnection() *Filter { return p.manualConn }

func (p *InPin) SetManualConnection(ctx context.Context, connected bool) {
	p.base().setManualConnection(ctx, connected)
}

func (p *InPin) SetManualConnectionFor(ctx context.Context, f *Filter) {
	p.base().setManualConnectionFor(ctx, f)
}

func (p *InPin) Disconnect(ctx context.Context) {
	p.base().disconnect(ctx)
}

func (p *OutPin) base() *pin                { return (*pin)(p) }
func (p *OutPin) String() string            { return p.base().String() }
func (p *OutPin) Name() string              { return p.name }
func (p *OutPin) Direction() Direction      { return DirectionOut }
func (p *OutPin) Owner() *Filter            { return p.owner }
func (p *OutPin) IsPrivate() bool           { return p.isPrivate }
func (p *OutPin) IsConnected() bool         { return p.base().isConnected() }
func (p *OutPin) ManualConnection() *Filter { return p.manualConn }

func (p *OutPin) SetManualConnection(ctx context.Context, connected bool) {
	p.base().setManualConnection(ctx, connected)
}

func (p *OutPin) SetManualConnectionFor(ctx context.Context, f *Filter) {
	p.base().setManualConnectionFor(ctx, f)
}

func (p *OutPin) Disconnect(ctx context.Context) {
	p.base().disconnect(ctx)
}
