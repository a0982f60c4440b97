package seatplan

import "sync"

// subscriberBuffer is the number of changes queued per subscriber before
// notifications are dropped.
const subscriberBuffer = 16

// subscriber is one Subscribe channel.
type subscriber struct {
	ch     chan Change
	mu     sync.Mutex
	closed bool
}

// trySend delivers a change without blocking.
//
// Returns:
//   - bool: false when the subscriber is closed or its buffer is full
func (s *subscriber) trySend(c Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.ch <- c:
		return true
	default:
		// slow subscriber; it will see a later version
		return false
	}
}

// close closes the channel once.
func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Subscribe returns a channel of state change notifications and a function
// that unsubscribes and closes the channel.
//
// Notifications never block editing: a subscriber that falls more than a few
// changes behind misses notifications, and should re-read the state with View
// when it catches up. Change.Version lets it notice the gap.
//
// Example:
//
//	changes, unsubscribe := ed.Subscribe()
//	defer unsubscribe()
//	for c := range changes {
//	    redraw(ed.View(), c.Kind)
//	}
func (e *Editor) Subscribe() (<-chan Change, func()) {
	id := e.nextSubscriberID.Add(1)
	sub := &subscriber{ch: make(chan Change, subscriberBuffer)}
	e.subscribers.Store(id, sub)

	unsubscribe := func() {
		if s, ok := e.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}

	return sub.ch, unsubscribe
}

// notify bumps the state version and fans the change out to subscribers and
// the OnStateChanged hook.
func (e *Editor) notify(kind ChangeKind, version uint64) {
	c := Change{Kind: kind, Version: version}

	e.subscribers.Range(func(_ uint64, s *subscriber) bool {
		if !s.trySend(c) {
			e.metrics.RecordStateChangeDropped()
		}

		return true
	})

	go func() {
		if err := e.hooks.OnStateChanged(e.ctx, kind); err != nil {
			e.logError("state change hook error", "change", string(kind), "error", err)
		}
	}()
}

// Version returns the number of committed changes so far.
func (e *Editor) Version() uint64 {
	return e.version.Load()
}
