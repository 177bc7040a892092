// Package feed carries store change notifications to whoever renders them.
package feed

import "sync"

// Publisher receives a change notification after a store mutation has been applied.
// Publish must not block.
type Publisher interface {
	Publish(topic string, payload any)
}

type nop struct{}

func (nop) Publish(string, any) {}

// OrNop returns p, or a Publisher that drops everything when p is nil.
func OrNop(p Publisher) Publisher {
	if p == nil {
		return nop{}
	}
	return p
}

// Recorder keeps every notification; tests use it to assert on the feed. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

type Event struct {
	Topic   string
	Payload any
}

func (r *Recorder) Publish(topic string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Topic: topic, Payload: payload})
}

// Events returns a copy of the recorded notifications in publish order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Topics returns the recorded topics in publish order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Topic)
	}
	return out
}
