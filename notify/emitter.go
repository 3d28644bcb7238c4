package notify

// listenerSet is an ordered, id-keyed collection of listeners. Notification
// iterates over a snapshot so a listener may remove itself (or tear down an
// entire subscription chain) from inside its own callback.
type listenerSet struct {
	entries []listenerEntry
	nextID  int
}

type listenerEntry struct {
	id int
	fn Listener
}

func (s *listenerSet) add(fn Listener) (remove func()) {
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, listenerEntry{id: id, fn: fn})

	return func() {
		for i := range s.entries {
			if s.entries[i].id == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

func (s *listenerSet) notify(ev ChangeEvent) {
	if len(s.entries) == 0 {
		return
	}

	snapshot := make([]listenerEntry, len(s.entries))
	copy(snapshot, s.entries)

	for _, e := range snapshot {
		e.fn(ev)
	}
}

// Emitter is an embeddable after-change notifier. A type gains the
// Observable contract by embedding it and calling Changed from its setters:
//
//	type Person struct {
//		notify.Emitter
//		name string
//	}
//
//	func (p *Person) SetName(v string) {
//		p.name = v
//		p.Changed(p, "Name", v)
//	}
//
// Emitter carries no locking of its own; it inherits the threading model of
// the object that embeds it.
type Emitter struct {
	changed listenerSet
}

// OnChanged registers an after-change listener.
func (e *Emitter) OnChanged(fn Listener) (remove func()) {
	return e.changed.add(fn)
}

// Changed fires an after-change event for member with its new value.
func (e *Emitter) Changed(sender any, member string, value any) {
	e.changed.notify(ChangeEvent{Sender: sender, Member: member, Value: value})
}

// PreEmitter is an embeddable before+after notifier. Setters call Changing
// with the current value before assigning, then Changed with the new value.
type PreEmitter struct {
	Emitter

	changing listenerSet
}

// OnChanging registers a before-change listener.
func (e *PreEmitter) OnChanging(fn Listener) (remove func()) {
	return e.changing.add(fn)
}

// Changing fires a before-change event for member with the value that is
// about to be replaced.
func (e *PreEmitter) Changing(sender any, member string, value any) {
	e.changing.notify(ChangeEvent{Sender: sender, Member: member, Value: value})
}
