// Package notify defines the change-notification contracts that observable
// model types expose and the observation engine consumes.
//
// Two families exist:
//   - Interface-based: types implement Observable (after-change) or
//     PreObservable (before+after) directly, usually by embedding Emitter or
//     PreEmitter.
//   - Platform bases: types embed a concrete base (KVOBase, WidgetBase) that
//     carries its own registration API and is discovered by walking embedded
//     fields rather than by interface satisfaction.
package notify

// ChangeEvent describes one property change on a sender.
//
// For after-change notifications Value is the new value. For before-change
// notifications Value is the value that is about to be replaced.
type ChangeEvent struct {
	Sender any
	Member string
	Value  any
}

// Listener receives change events. Listeners are invoked synchronously on
// the goroutine that mutated the property.
type Listener func(ChangeEvent)

// Observable is the after-change notification contract. OnChanged registers
// a listener and returns its removal function. Removal is idempotent.
type Observable interface {
	OnChanged(fn Listener) (remove func())
}

// PreObservable extends Observable with before-change notifications.
type PreObservable interface {
	Observable
	OnChanging(fn Listener) (remove func())
}

// ErrorNotifier marks types that expose validation errors alongside change
// notifications. Statically generated observers cannot honor validation
// results; the analyzer flags bindings to such types so callers can route
// them through the runtime engine instead.
type ErrorNotifier interface {
	ErrorsFor(member string) []error
}
