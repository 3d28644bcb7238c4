package observe

import (
	"fmt"
	"reflect"

	"binding-generator/notify"
)

// Observer receives terminal-value emissions from a chain subscription.
type Observer func(notify.ChangeEvent)

// Options control how a chain subscription behaves.
type Options struct {
	// Mode selects before- or after-change observation of the terminal
	// segment. Intermediate segments always observe after-change:
	// rewiring needs the value that is now current.
	Mode Mode

	// EmitInitial synchronously delivers the current terminal value once,
	// before Subscribe returns, provided every intermediate receiver is
	// non-nil at that moment.
	EmitInitial bool

	// Distinct coalesces consecutive value-equal terminal emissions.
	Distinct bool

	// Registry overrides the provider table. Nil means DefaultRegistry.
	Registry *Registry
}

func (o Options) registry() *Registry {
	if o.Registry != nil {
		return o.Registry
	}

	return DefaultRegistry
}

// levelState tracks the single active subscription of one chain level.
type levelState struct {
	receiver any
	remove   func()
}

// Subscription is one active observation of a PropertyPath rooted at a live
// instance. It holds at most one active inner subscription per level and
// replaces the downstream arena wholesale whenever an upstream level emits
// (switch-latest semantics).
//
// A Subscription is driven synchronously by the notification callbacks of
// the observed objects and introduces no concurrency of its own.
type Subscription struct {
	path      *ResolvedPath
	opts      Options
	observer  Observer
	providers []Provider
	levels    []levelState

	disposed bool
	hasLast  bool
	last     any
}

// Subscribe decomposes expr against root's type and observes the resulting
// chain. See SubscribePath for the semantics.
func Subscribe(root any, expr string, opts Options, observer Observer) (*Subscription, error) {
	rp, _, err := ResolveExpr(reflect.TypeOf(root), expr)
	if err != nil {
		return nil, err
	}

	return SubscribePath(root, rp, opts, observer)
}

// SubscribePath observes a resolved property path on root. Every level's
// declaring type is validated up front: intermediates need an after-change
// mechanism and the terminal level needs the requested mode. A type without
// support fails with ErrNoNotificationSupport at setup, never with a
// silently inert subscription.
func SubscribePath(root any, rp *ResolvedPath, opts Options, observer Observer) (*Subscription, error) {
	if root == nil {
		return nil, fmt.Errorf("nil root instance")
	}

	if observer == nil {
		return nil, fmt.Errorf("nil observer")
	}

	reg := opts.registry()
	last := rp.Len() - 1

	providers := make([]Provider, rp.Len())

	for i, rs := range rp.segments {
		before := i == last && opts.Mode == BeforeChange

		p := reg.Resolve(rs.declaring, rs.seg.Name, before)
		if p == nil {
			return nil, fmt.Errorf("%w: segment %q on %s (%s)",
				ErrNoNotificationSupport, rs.seg.Name, rs.seg.DeclaringType, modeAt(i, last, opts.Mode))
		}

		providers[i] = p
	}

	s := &Subscription{
		path:      rp,
		opts:      opts,
		observer:  observer,
		providers: providers,
		levels:    make([]levelState, rp.Len()),
	}

	if err := s.rewire(0, root, opts.EmitInitial); err != nil {
		s.Dispose()
		return nil, err
	}

	return s, nil
}

func modeAt(i, last int, mode Mode) Mode {
	if i == last {
		return mode
	}

	return AfterChange
}

// rewire replaces the subscription arena from level i downward: tears down
// existing downstream handles deepest-first, attaches to the new receiver,
// re-reads current values down the chain, and (when emit is set) delivers
// the new terminal value. A nil receiver leaves everything below level i
// detached until an upstream notification supplies a live one.
func (s *Subscription) rewire(i int, receiver any, emit bool) error {
	s.detachFrom(i)

	if isNilValue(receiver) {
		return nil
	}

	last := s.path.Len() - 1
	before := i == last && s.opts.Mode == BeforeChange
	name := s.path.segments[i].seg.Name

	remove, err := s.providers[i].Observe(receiver, name, before, func(ev notify.ChangeEvent) {
		s.onEvent(i, ev)
	})
	if err != nil {
		return err
	}

	s.levels[i] = levelState{receiver: receiver, remove: remove}

	if i == last {
		if emit {
			s.emit(receiver, s.read(receiver, i))
		}

		return nil
	}

	return s.rewire(i+1, s.read(receiver, i), emit)
}

// onEvent handles one notification at level i. Terminal events forward the
// value; intermediate events make the emitted value the new receiver for
// level i+1.
func (s *Subscription) onEvent(i int, ev notify.ChangeEvent) {
	if s.disposed {
		return
	}

	last := s.path.Len() - 1

	if i == last {
		s.emit(s.levels[i].receiver, ev.Value)
		return
	}

	// Rewire errors cannot occur here: providers were validated against
	// the declared types and the chain type-checks.
	_ = s.rewire(i+1, ev.Value, true)
}

// emit forwards a terminal value, honoring Distinct coalescing.
func (s *Subscription) emit(sender any, value any) {
	if s.disposed {
		return
	}

	if s.opts.Distinct && s.hasLast && ValuesEqual(s.last, value) {
		return
	}

	s.hasLast = true
	s.last = value

	s.observer(notify.ChangeEvent{
		Sender: sender,
		Member: s.path.segments[s.path.Len()-1].seg.Name,
		Value:  value,
	})
}

// read invokes the getter of segment i on receiver.
func (s *Subscription) read(receiver any, i int) any {
	out := s.path.segments[i].getter.Func.Call([]reflect.Value{reflect.ValueOf(receiver)})

	return out[0].Interface()
}

// detachFrom releases the handles of levels i..leaf, deepest first.
func (s *Subscription) detachFrom(i int) {
	for j := len(s.levels) - 1; j >= i; j-- {
		if s.levels[j].remove != nil {
			s.levels[j].remove()
		}

		s.levels[j] = levelState{}
	}
}

// Dispose tears the whole chain down, deepest level first. Idempotent, and
// safe to call from inside a notification callback that this subscription
// itself triggered: the disposed flag is set before any handle is released,
// so re-entrant emissions are dropped.
func (s *Subscription) Dispose() {
	if s.disposed {
		return
	}

	s.disposed = true
	s.detachFrom(0)
}

// ValuesEqual compares terminal values: == for comparable kinds of the same
// type, reflect.DeepEqual otherwise. It is the equality used for Distinct
// coalescing and for binding echo suppression.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == tb && ta.Comparable() {
		return a == b
	}

	return reflect.DeepEqual(a, b)
}

// isNilValue reports nil interfaces and typed nil pointers.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
