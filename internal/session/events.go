// Package session keeps browser sessions and derives each session's
// authentication state from a stream of auth events.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/example/collex/internal/models"
)

// EventKind names an auth event.
type EventKind string

const (
	EventInitialSession   EventKind = "INITIAL_SESSION"
	EventSignedIn         EventKind = "SIGNED_IN"
	EventSignedOut        EventKind = "SIGNED_OUT"
	EventTokenRefreshed   EventKind = "TOKEN_REFRESHED"
	EventUserUpdated      EventKind = "USER_UPDATED"
	EventPasswordRecovery EventKind = "PASSWORD_RECOVERY"
)

// Event is a session-changed notification. ExpiresAt is set on SIGNED_IN
// and TOKEN_REFRESHED.
type Event struct {
	Kind      EventKind
	SessionID string
	User      *models.AuthUser
	ExpiresAt time.Time
}

// Hub fans auth events out to subscribers. Publish blocks until every
// subscriber has received the event or ctx is done.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it;
// the channel is left open.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish delivers ev to all current subscribers.
func (h *Hub) Publish(ctx context.Context, ev Event) error {
	h.mu.RLock()
	targets := make([]chan Event, 0, len(h.subs))
	for _, ch := range h.subs {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
