package notify

// Platform bases model foreign widget-toolkit objects that do not implement
// the Observable interfaces but expose their own registration hooks. The
// observation engine discovers them by walking a struct's embedded fields,
// the moral equivalent of a base-class inheritance check.

// KVOBase is a key-value-observing style base: it supports both before- and
// after-change registration despite being a base type rather than an
// interface implementation.
type KVOBase struct {
	willChange listenerSet
	didChange  listenerSet
}

// ObserveKV registers a listener for member. When before is true the
// listener fires with the value about to be replaced, otherwise with the new
// value after assignment.
func (b *KVOBase) ObserveKV(before bool, fn Listener) (remove func()) {
	if before {
		return b.willChange.add(fn)
	}

	return b.didChange.add(fn)
}

// WillChange fires before-change listeners. Setters on embedding types call
// this with the current value prior to assignment.
func (b *KVOBase) WillChange(sender any, member string, value any) {
	b.willChange.notify(ChangeEvent{Sender: sender, Member: member, Value: value})
}

// DidChange fires after-change listeners with the new value.
func (b *KVOBase) DidChange(sender any, member string, value any) {
	b.didChange.notify(ChangeEvent{Sender: sender, Member: member, Value: value})
}

// WidgetBase is an after-change-only platform base.
type WidgetBase struct {
	updated listenerSet
}

// ObserveWidget registers an after-change listener.
func (b *WidgetBase) ObserveWidget(fn Listener) (remove func()) {
	return b.updated.add(fn)
}

// Updated fires after-change listeners with the new value.
func (b *WidgetBase) Updated(sender any, member string, value any) {
	b.updated.notify(ChangeEvent{Sender: sender, Member: member, Value: value})
}
