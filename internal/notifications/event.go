// Package notifications delivers board change events to in-process
// subscribers, other processes through Redis, and websocket clients.
package notifications

import (
	"context"
	"sync"
	"time"

	"echohole/internal/observability"
)

// Event types.
const (
	EventNewPost      = "new_post"
	EventPostReported = "post_reported"
	EventPostApproved = "post_approved"
	EventPostRejected = "post_rejected"
	EventPostDeleted  = "post_deleted"
	EventNewVisit     = "new_visit"
)

// Event is a change notification. PostID is zero for events not tied to a post.
type Event struct {
	Type    string `json:"type"`
	PostID  uint   `json:"post_id,omitempty"`
	Payload any    `json:"payload,omitempty"`
	At      int64  `json:"at"`
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType string, postID uint, payload any) Event {
	return Event{Type: eventType, PostID: postID, Payload: payload, At: time.Now().Unix()}
}

// Publisher accepts change events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Subscription is a buffered, ordered feed of events from a Bus.
type Subscription struct {
	C    <-chan Event
	ch   chan Event
	name string
	bus  *Bus
}

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

// Bus fans events out to subscribers in publish order. A subscriber whose
// buffer is full misses the event rather than blocking publishers.
type Bus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a subscriber with the given buffer size.
func (b *Bus) Subscribe(name string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)
	s := &Subscription{C: ch, ch: ch, name: name, bus: b}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
}

// Publish implements Publisher. Delivery is serialized so every subscriber
// observes events in the same order.
func (b *Bus) Publish(_ context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	observability.EventsPublished.WithLabelValues(e.Type).Inc()
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			observability.EventDrops.WithLabelValues(s.name).Inc()
		}
	}
	return nil
}

// Subscribers returns the number of attached subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
