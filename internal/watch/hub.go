// Package watch observes the trackio database file and fans out run-update
// notifications to SSE clients and the optional NATS publisher.
package watch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunUpdate signals that tracked data changed on disk.
type RunUpdate struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// NewRunUpdate creates an update event for the given database path.
func NewRunUpdate(path string) RunUpdate {
	return RunUpdate{ID: uuid.NewString(), Timestamp: time.Now().UTC(), Path: path}
}

// Hub fans RunUpdate events out to subscribers. Slow subscribers drop
// events instead of blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan RunUpdate]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan RunUpdate]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel function removes
// the subscription and closes the channel.
func (h *Hub) Subscribe() (<-chan RunUpdate, func()) {
	ch := make(chan RunUpdate, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber that has buffer room.
func (h *Hub) Publish(ev RunUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is lagging; it will catch up on the next event.
		}
	}
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
