// Package bind composes chain subscriptions into one-way and two-way
// property bindings with optional value conversion and scheduler hand-off.
package bind

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/petermattis/goid"

	"binding-generator/notify"
	"binding-generator/observe"
)

// Direction selects binding propagation.
type Direction int

const (
	// OneWay propagates source changes to the target only.
	OneWay Direction = iota
	// TwoWay propagates changes in both directions.
	TwoWay
)

// Converter transforms a value crossing the binding. Nil means identity.
type Converter func(any) any

// Options configure a binding.
type Options struct {
	Direction Direction

	// Convert maps source values onto the target property.
	Convert Converter
	// ConvertBack maps target values onto the source property (TwoWay).
	ConvertBack Converter

	// Scheduler, when set, hands each assignment off as a discrete unit
	// instead of applying it inline. Disposal cancels units that have not
	// yet run.
	Scheduler Scheduler

	// Registry overrides the notification-provider table.
	Registry *observe.Registry
}

// Binding is a live composition of one or two chain subscriptions. Disposal
// tears down both directions and any still-pending scheduled hand-offs
// atomically.
type Binding struct {
	forward  *observe.Subscription
	backward *observe.Subscription

	// echo guards, one per direction that can receive an echo
	fromForward  echoGuard
	fromBackward echoGuard

	mu       sync.Mutex
	pending  map[int]func()
	nextID   int
	disposed bool
}

// Bind observes sourceExpr on source and keeps the property named by
// targetExpr on target in sync. The source chain emits its current value
// immediately, so the target is initialized before Bind returns (unless a
// scheduler defers the write).
//
// Construction fails loudly at setup on decomposition errors or unsupported
// notification mechanisms; a partially built binding never leaks its
// already-created subscriptions.
func Bind(source any, sourceExpr string, target any, targetExpr string, opts Options) (*Binding, error) {
	sourcePath, _, err := observe.ResolveExpr(reflect.TypeOf(source), sourceExpr)
	if err != nil {
		return nil, fmt.Errorf("source path: %w", err)
	}

	targetPath, _, err := observe.ResolveExpr(reflect.TypeOf(target), targetExpr)
	if err != nil {
		return nil, fmt.Errorf("target path: %w", err)
	}

	if !targetPath.CanWriteLeaf() {
		return nil, fmt.Errorf("target path %q is not writable", targetExpr)
	}

	if opts.Direction == TwoWay && !sourcePath.CanWriteLeaf() {
		return nil, fmt.Errorf("source path %q is not writable for a two-way binding", sourceExpr)
	}

	b := &Binding{pending: make(map[int]func())}

	b.forward, err = observe.SubscribePath(source, sourcePath, observe.Options{
		Mode:        observe.AfterChange,
		EmitInitial: true,
		Registry:    opts.Registry,
	}, func(ev notify.ChangeEvent) {
		if b.fromBackward.suppress(ev.Value) {
			return
		}

		b.apply(&b.fromForward, targetPath, target, convert(opts.Convert, ev.Value), opts.Scheduler)
	})
	if err != nil {
		return nil, fmt.Errorf("source subscription: %w", err)
	}

	if opts.Direction == TwoWay {
		b.backward, err = observe.SubscribePath(target, targetPath, observe.Options{
			Mode:        observe.AfterChange,
			EmitInitial: false,
			Registry:    opts.Registry,
		}, func(ev notify.ChangeEvent) {
			if b.fromForward.suppress(ev.Value) {
				return
			}

			b.apply(&b.fromBackward, sourcePath, source, convert(opts.ConvertBack, ev.Value), opts.Scheduler)
		})
		if err != nil {
			// Do not leak the forward subscription.
			b.forward.Dispose()
			return nil, fmt.Errorf("target subscription: %w", err)
		}
	}

	return b, nil
}

func convert(c Converter, v any) any {
	if c == nil {
		return v
	}

	return c(v)
}

// apply writes value through path, inline or via the scheduler, opening the
// guard window for the duration of the write so the resulting change
// notification on the opposite chain is recognized as an echo.
func (b *Binding) apply(guard *echoGuard, path *observe.ResolvedPath, root any, value any, sched Scheduler) {
	run := func() {
		guard.open(value)
		defer guard.close()

		// A nil intermediate skips the write; assignability was
		// validated by construction, conversion errors surface on the
		// forward pass in tests.
		_, _ = path.WriteLeaf(root, value)
	}

	if sched == nil {
		run()
		return
	}

	b.schedule(sched, run)
}

// schedule enqueues one unit and tracks its cancel handle until it runs.
func (b *Binding) schedule(sched Scheduler, fn func()) {
	b.mu.Lock()

	if b.disposed {
		b.mu.Unlock()
		return
	}

	id := b.nextID
	b.nextID++

	b.mu.Unlock()

	cancel := sched.Schedule(func() {
		b.mu.Lock()

		if b.disposed {
			b.mu.Unlock()
			return
		}

		delete(b.pending, id)
		b.mu.Unlock()

		fn()
	})

	b.mu.Lock()
	if !b.disposed {
		b.pending[id] = cancel
		cancel = nil
	}
	b.mu.Unlock()

	// Disposal raced construction: cancel immediately.
	if cancel != nil {
		cancel()
	}
}

// Dispose tears down both directions and cancels pending scheduled units.
// Idempotent; safe to call from inside a notification callback.
func (b *Binding) Dispose() {
	b.mu.Lock()

	if b.disposed {
		b.mu.Unlock()
		return
	}

	b.disposed = true
	cancels := make([]func(), 0, len(b.pending))

	for _, c := range b.pending {
		cancels = append(cancels, c)
	}

	b.pending = nil
	b.mu.Unlock()

	for _, c := range cancels {
		c()
	}

	b.forward.Dispose()

	if b.backward != nil {
		b.backward.Dispose()
	}
}

// echoGuard suppresses ping-pong between the two directions of a binding:
// while one direction applies a value, the opposite direction ignores a
// notification that arrives on the same goroutine carrying an equal value.
// Storage that coalesces no-op assignments makes the guard unnecessary but
// harmless.
type echoGuard struct {
	active bool
	gid    int64
	value  any
}

func (g *echoGuard) open(v any) {
	g.active = true
	g.gid = goid.Get()
	g.value = v
}

func (g *echoGuard) close() {
	g.active = false
	g.value = nil
}

func (g *echoGuard) suppress(v any) bool {
	return g.active && g.gid == goid.Get() && observe.ValuesEqual(g.value, v)
}
