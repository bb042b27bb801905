package events

import (
	"context"
	"sync"
	"time"
)

// Kind names a change event.
type Kind string

const (
	AttemptStarted   Kind = "attempt.started"
	AttemptCompleted Kind = "attempt.completed"
	ProfileUpdated   Kind = "profile.updated"
	SessionStarted   Kind = "session.started"
)

// Event is a typed change notification.
type Event struct {
	Kind      Kind      `json:"kind"`
	UserID    string    `json:"userId"`
	QuizID    string    `json:"quizId,omitempty"`
	AttemptID string    `json:"attemptId,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher accepts events. Publishing never fails the caller's operation.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Filter selects the events a subscriber receives. A nil filter receives everything.
type Filter func(Event) bool

// ForUser receives only events about one user.
func ForUser(userID string) Filter {
	return func(e Event) bool { return e.UserID == userID }
}

const subscriberBuffer = 8

// Broker fans events out to in-process subscribers.
type Broker struct {
	now         func() time.Time
	mu          sync.RWMutex
	subscribers map[chan Event]Filter
}

func NewBroker() *Broker {
	return &Broker{
		now:         time.Now,
		subscribers: make(map[chan Event]Filter),
	}
}

// Subscribe returns a channel of matching events.
// The caller must invoke the returned cancel function to avoid leaks.
func (b *Broker) Subscribe(filter Filter) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = filter
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subscribers[ch]; ok {
				delete(b.subscribers, ch)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Publish delivers the event to every matching subscriber without blocking.
func (b *Broker) Publish(_ context.Context, event Event) {
	if event.At.IsZero() {
		event.At = b.now().UTC()
	}

	// Lock, not RLock: the drain-then-send below must not interleave with another
	// publisher on the same channel.
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch, filter := range b.subscribers {
		if filter != nil && !filter(event) {
			continue
		}
		select {
		case ch <- event:
		default:
			// slow subscriber: drop its oldest event to make room
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Subscribers reports the number of active subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Fanout publishes to several publishers in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, event)
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
