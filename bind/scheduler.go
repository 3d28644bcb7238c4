package bind

import "sync"

// Scheduler hands terminal values off to another execution context. Each
// emission becomes one discrete unit of work; units scheduled on the same
// scheduler run in FIFO order relative to each other.
//
// Schedule returns a cancel function. Cancelling a unit that already ran is
// a no-op.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

type queuedUnit struct {
	fn        func()
	cancelled bool
}

// QueueScheduler is a manual trampoline: Schedule enqueues, Flush drains on
// the calling goroutine. Useful for UI loops that pump on a frame tick and
// for deterministic tests.
type QueueScheduler struct {
	mu    sync.Mutex
	queue []*queuedUnit
}

// NewQueueScheduler returns an empty queue scheduler.
func NewQueueScheduler() *QueueScheduler {
	return &QueueScheduler{}
}

// Schedule enqueues one unit and returns its cancel function.
func (s *QueueScheduler) Schedule(fn func()) (cancel func()) {
	u := &queuedUnit{fn: fn}

	s.mu.Lock()
	s.queue = append(s.queue, u)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		u.cancelled = true
		s.mu.Unlock()
	}
}

// Flush runs all queued units in order and returns how many ran. Units
// scheduled while flushing run in the same pass.
func (s *QueueScheduler) Flush() int {
	ran := 0

	for {
		s.mu.Lock()

		if len(s.queue) == 0 {
			s.mu.Unlock()
			return ran
		}

		u := s.queue[0]
		s.queue = s.queue[1:]
		skip := u.cancelled

		s.mu.Unlock()

		if !skip {
			u.fn()
			ran++
		}
	}
}

// Pending returns the number of units waiting to run.
func (s *QueueScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for _, u := range s.queue {
		if !u.cancelled {
			n++
		}
	}

	return n
}
