// Package filter implements a graph of filters exchanging frames through
// single-slot pins, driven by a cooperative graph runner.
//
// All filters sharing a root must be used from one goroutine at a time
// (see package graphthread); the only methods safe to be called from other
// goroutines are Wakeup, MarkAsyncProgress and Interrupt.
package filter

import (
	"context"
	"fmt"
	"slices"

	"github.com/xaionaro-go/pinflow/logger"
	"go.uber.org/atomic"
)

// Abstract is the implementation of a filter.
type Abstract interface {
	// Process is called by the graph runner when the filter is pending. It
	// should move as much data between the private pins as it can without
	// blocking, and return. It is never called concurrently with itself.
	//
	// A returned error marks the filter as failed (see MarkFailed).
	Process(ctx context.Context, f *Filter) error
}

type Initer interface {
	Init(ctx context.Context, f *Filter) error
}

type Resetter interface {
	Reset(ctx context.Context, f *Filter)
}

type Destroyer interface {
	Destroy(ctx context.Context, f *Filter)
}

type Commander interface {
	Command(ctx context.Context, f *Filter, cmd *Command) error
}

type Filter struct {
	Counters Counters

	impl     Abstract
	name     string
	parent   *Filter
	runner   *runner
	children []*Filter

	// pins[i] and ppins[i] are the public and the private sides of the same pair.
	pins  []*pin
	ppins []*pin

	errorHandler *Filter
	highPriority bool

	pending bool
	failed  bool
	failure *ErrFailed

	// guarded by runner.asyncLocker
	asyncPending bool

	isDestroyed atomic.Bool
}

// New creates a filter in the graph of parent. impl may be nil, which makes a
// container filter without own processing (like the root).
//
// If impl implements Initer and Init fails, the filter is destroyed and
// ErrInitFailed is returned.
func New(
	ctx context.Context,
	parent *Filter,
	impl Abstract,
	opts ...Option,
) (_ret *Filter, _err error) {
	assert(ctx, parent != nil, "a filter requires a parent; roots are created with NewRoot")
	logger.Tracef(ctx, "New(%s, %T)", parent, impl)
	defer func() { logger.Tracef(ctx, "/New(%s, %T): %v %v", parent, impl, _ret, _err) }()
	return newFilter(ctx, parent, impl, Options(opts).config())
}

// NewRoot creates a root filter together with its graph runner.
func NewRoot(
	ctx context.Context,
	opts ...Option,
) *Filter {
	cfg := Options(opts).config()
	if cfg.Name == "" {
		cfg.Name = "root"
	}
	f, err := newFilter(ctx, nil, nil, cfg)
	assert(ctx, err == nil, err)
	return f
}

func newFilter(
	ctx context.Context,
	parent *Filter,
	impl Abstract,
	cfg Config,
) (*Filter, error) {
	f := &Filter{
		impl:         impl,
		name:         cfg.Name,
		parent:       parent,
		errorHandler: cfg.ErrorHandler,
		highPriority: cfg.HighPriority,
	}
	if f.name == "" {
		f.name = defaultName(impl)
	}

	if parent != nil {
		assert(ctx, !parent.IsDestroyed(), ErrDestroyed{Name: parent.name})
		f.runner = parent.runner
		parent.children = append(parent.children, f)
	} else {
		f.runner = newRunner(f, cfg)
	}

	if initer, ok := impl.(Initer); ok {
		if err := initer.Init(ctx, f); err != nil {
			f.Destroy(ctx)
			return nil, ErrInitFailed{Name: f.name, Err: err}
		}
	}

	return f, nil
}

func defaultName(impl Abstract) string {
	switch impl := impl.(type) {
	case nil:
		return "bin"
	case fmt.Stringer:
		return impl.String()
	default:
		return fmt.Sprintf("%T", impl)
	}
}

func (f *Filter) String() string {
	if f == nil {
		return "-"
	}
	return f.name
}

func (f *Filter) Name() string {
	return f.name
}

func (f *Filter) SetName(name string) {
	f.name = name
}

func (f *Filter) Parent() *Filter {
	return f.parent
}

func (f *Filter) Root() *Filter {
	return f.runner.root
}

func (f *Filter) IsRoot() bool {
	return f.runner.root == f
}

func (f *Filter) Children() []*Filter {
	return slices.Clone(f.children)
}

func (f *Filter) Implementation() Abstract {
	return f.impl
}

func (f *Filter) SetHighPriority(v bool) {
	f.highPriority = v
}

func (f *Filter) IsHighPriority() bool {
	return f.highPriority
}

func (f *Filter) IsPending() bool {
	return f.pending
}

func (f *Filter) IsDestroyed() bool {
	return f.isDestroyed.Load()
}

// AddPin declares a new pin pair. dir is the direction of the public pin;
// the returned pin is the private side (with the opposite direction), which
// is what the filter itself uses.
//
// The public pin is initially manually connected to the parent.
func (f *Filter) AddPin(
	ctx context.Context,
	dir Direction,
	name string,
) Pin {
	assert(ctx, dir == DirectionIn || dir == DirectionOut, dir)
	assert(ctx, name != "", "a pin requires a name")
	assert(ctx, f.NamedPin(name) == nil, "the pin name is already used", f, name)

	pub := &pin{
		name:       name,
		direction:  dir,
		owner:      f,
		manualConn: f.parent,
	}
	priv := &pin{
		name:       name,
		direction:  dir.Opposite(),
		owner:      f,
		other:      pub,
		isPrivate:  true,
		manualConn: f,
	}
	pub.other = priv

	f.pins = append(f.pins, pub)
	f.ppins = append(f.ppins, priv)

	initConnection(ctx, pub)

	return priv.typed()
}

// AddInput adds a pin the users write into; the filter reads the frames
// from the returned private pin.
func (f *Filter) AddInput(ctx context.Context, name string) *OutPin {
	return f.AddPin(ctx, DirectionIn, name).(*OutPin)
}

// AddOutput adds a pin the users read from; the filter writes the frames
// into the returned private pin.
func (f *Filter) AddOutput(ctx context.Context, name string) *InPin {
	return f.AddPin(ctx, DirectionOut, name).(*InPin)
}

func (f *Filter) NumPins() int {
	return len(f.pins)
}

// Pin returns the public pin #idx.
func (f *Filter) Pin(idx int) Pin {
	return f.pins[idx].typed()
}

// PrivatePin returns the private side of the pin #idx.
func (f *Filter) PrivatePin(idx int) Pin {
	return f.ppins[idx].typed()
}

// Input returns the public pin #idx, which must be an In pin.
func (f *Filter) Input(idx int) *InPin {
	p := f.pins[idx]
	if p.direction != DirectionIn {
		panic(fmt.Errorf("pin #%d of %s is not an input", idx, f))
	}
	return (*InPin)(p)
}

// Output returns the public pin #idx, which must be an Out pin.
func (f *Filter) Output(idx int) *OutPin {
	p := f.pins[idx]
	if p.direction != DirectionOut {
		panic(fmt.Errorf("pin #%d of %s is not an output", idx, f))
	}
	return (*OutPin)(p)
}

// NamedPin returns the public pin with the given name, or nil.
func (f *Filter) NamedPin(name string) Pin {
	for _, p := range f.pins {
		if p.name == name {
			return p.typed()
		}
	}
	return nil
}

// RemovePin disconnects both sides of the pin pair (dropping buffered data)
// and removes it. Either side may be passed.
func (f *Filter) RemovePin(ctx context.Context, p Pin) {
	if p == nil {
		return
	}
	b := p.base()
	if b == nil {
		return
	}
	assert(ctx, b.owner == f, "the pin belongs to another filter", b, f)
	f.removePinAt(ctx, slices.IndexFunc(f.ppins, func(item *pin) bool {
		return item == b || item == b.other
	}))
}

func (f *Filter) removePinAt(ctx context.Context, idx int) {
	assert(ctx, idx >= 0 && idx < len(f.ppins), "pin not found", f, idx)
	logger.Tracef(ctx, "removePin(%s)", f.pins[idx])
	f.ppins[idx].disconnect(ctx)
	f.pins[idx].disconnect(ctx)
	f.pins = slices.Delete(f.pins, idx, idx+1)
	f.ppins = slices.Delete(f.ppins, idx, idx+1)
}

// Command sends a synchronous command to the filter.
func (f *Filter) Command(ctx context.Context, cmd *Command) error {
	commander, ok := f.impl.(Commander)
	if !ok {
		return ErrNotSupportedCommand{Type: cmd.Type}
	}
	return commander.Command(ctx, f, cmd)
}
