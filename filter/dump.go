package filter

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/pinflow/logger"
	"github.com/xaionaro-go/pinflow/types"
)

func dumpPinState(ctx context.Context, p *pin) {
	var userConn, conn string = "-", "-"
	if p.userConn != nil {
		userConn = p.userConn.owner.String()
	}
	if p.conn != nil {
		conn = p.conn.owner.String()
	}
	var flags string
	if p.isPrivate {
		flags += " (private)"
	}
	if p.withinConn {
		flags += " (within)"
	}
	if p.dataRequested {
		flags += " (request)"
	}
	logger.Infof(ctx, "  [%p] %s %s c=%s[%p] f=%s[%p] m=%s[%p]%s %s",
		p, p.name, p.direction.Arrow(),
		userConn, p.userConn,
		conn, p.conn,
		p.manualConn, p.manualConn,
		flags, p.data.Kind,
	)
}

func (f *Filter) GetObjectID() types.ObjectID {
	return types.GetObjectID(f)
}

// DumpStates logs the state of all pins of the filter and its descendants.
func (f *Filter) DumpStates(ctx context.Context) {
	logger.Infof(ctx, "%s#%d (%s#%d)%s", f, f.GetObjectID(), f.parent, f.parent.GetObjectID(), f.stateFlags())
	logger.Debugf(ctx, "statistics of %s: %s", f, spew.Sdump(f.GetStatistics()))
	for idx := range f.pins {
		dumpPinState(ctx, f.pins[idx])
		dumpPinState(ctx, f.ppins[idx])
	}
	for _, child := range f.children {
		child.DumpStates(ctx)
	}
}

func (f *Filter) stateFlags() string {
	var s string
	if f.pending {
		s += " (pending)"
	}
	if f.highPriority {
		s += " (high priority)"
	}
	if f.failed {
		s += fmt.Sprintf(" (failed: %v)", f.failure)
	}
	return s
}
