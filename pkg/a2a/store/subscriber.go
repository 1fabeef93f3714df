package store

import (
	"strconv"
	"sync"

	"github.com/micro/micro-a2a/pkg/a2a"
)

// subscriberQueueSize is the buffer depth backing each Subscriber's
// channel. It approximates the spec's "unbounded per-subscriber queue"
// without handing every subscriber its own unbounded goroutine stack; a
// slow subscriber applies backpressure to Publish instead of growing
// memory without limit.
const subscriberQueueSize = 256

// Subscriber is one consumer of a task's event stream: the channel a
// gin SSE handler (or a resubscribe handler) drains, FIFO, until it sees a
// Final event or Detach is called.
type Subscriber struct {
	id     string
	taskID string
	events chan a2a.Event

	mu     sync.Mutex
	closed bool
}

// Events returns the channel to range over. It is closed by Detach or once
// Publish delivers an event with Final == true.
func (s *Subscriber) Events() <-chan a2a.Event {
	return s.events
}

// send delivers event unless the subscriber has already been closed,
// guarding against a concurrent Detach closing the channel out from under
// an in-flight Publish.
func (s *Subscriber) send(event a2a.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.events <- event
}

// close closes the channel exactly once, safe to call concurrently from
// both Publish (on a Final event) and Detach.
func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// SubscriberRegistry fans a task's events out to every subscriber
// currently attached to it, per section 4.5 of the spec: one mutex
// guarding a map of task ID to subscriber list, FIFO per-queue delivery.
type SubscriberRegistry struct {
	mu   sync.Mutex
	subs map[string][]*Subscriber
	seq  int
}

// NewSubscriberRegistry builds an empty registry.
func NewSubscriberRegistry() *SubscriberRegistry {
	return &SubscriberRegistry{subs: make(map[string][]*Subscriber)}
}

// Subscribe attaches a new Subscriber to taskID's event stream.
func (r *SubscriberRegistry) Subscribe(taskID string) *Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	sub := &Subscriber{
		id:     formatSubscriberID(taskID, r.seq),
		taskID: taskID,
		events: make(chan a2a.Event, subscriberQueueSize),
	}
	r.subs[taskID] = append(r.subs[taskID], sub)
	return sub
}

// HasSubscribers reports whether taskID currently has at least one live
// subscriber.
func (r *SubscriberRegistry) HasSubscribers(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[taskID]) > 0
}

// Publish delivers event to every subscriber currently attached to
// taskID, in the order Publish is called. When event is Final, every
// matching subscriber's channel is closed after delivery and detached from
// the registry, honoring the "exactly one Final event, then detach"
// contract.
func (r *SubscriberRegistry) Publish(taskID string, event a2a.Event) {
	r.mu.Lock()
	subs := append([]*Subscriber(nil), r.subs[taskID]...)
	r.mu.Unlock()

	final := isFinalEvent(event)

	for _, sub := range subs {
		sub.send(event)
		if final {
			sub.close()
		}
	}

	if final {
		r.mu.Lock()
		delete(r.subs, taskID)
		r.mu.Unlock()
	}
}

// Detach removes sub from the registry and closes its channel, used when a
// client disconnects before a Final event arrives (e.g. the HTTP request
// context is canceled).
func (r *SubscriberRegistry) Detach(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := r.subs[sub.taskID][:0]
	for _, s := range r.subs[sub.taskID] {
		if s == sub {
			continue
		}
		remaining = append(remaining, s)
	}
	if len(remaining) == 0 {
		delete(r.subs, sub.taskID)
	} else {
		r.subs[sub.taskID] = remaining
	}

	sub.close()
}

// isFinalEvent reports whether event ends a dequeue loop: a status update
// with Final set, or a *JSONRPCError, which always terminates the stream it
// appears on.
func isFinalEvent(event a2a.Event) bool {
	switch e := event.(type) {
	case a2a.TaskStatusUpdateEvent:
		return e.Final
	case *a2a.JSONRPCError:
		return true
	default:
		return false
	}
}

func formatSubscriberID(taskID string, seq int) string {
	return taskID + "#" + strconv.Itoa(seq)
}
