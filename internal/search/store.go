package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/collex/pkg/cache"
)

const stateKeyPrefix = "search:"

// Store persists search State per browser session. It is the only writer of
// search state; other screens read the View.
type Store struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a Store keeping state for ttl after the last write.
func NewStore(c cache.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Load returns the session's state, or the zero State when none is stored.
func (s *Store) Load(ctx context.Context, sessionID string) (State, error) {
	raw, err := s.cache.Get(ctx, stateKeyPrefix+sessionID)
	if err != nil {
		return State{}, fmt.Errorf("load search state: %w", err)
	}
	if raw == "" {
		return State{}, nil
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, nil
	}
	return st, nil
}

// View returns the read-only projection of the session's state.
func (s *Store) View(ctx context.Context, sessionID string) (View, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return st.View(), nil
}

// Apply loads the session's state, applies fn and saves the result.
// Nothing is saved if ctx is already done.
func (s *Store) Apply(ctx context.Context, sessionID string, fn func(State) State) (State, error) {
	st, err := s.Load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	next := fn(st)
	if err := ctx.Err(); err != nil {
		return st, err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return st, fmt.Errorf("encode search state: %w", err)
	}
	if err := s.cache.Set(ctx, stateKeyPrefix+sessionID, string(raw), s.ttl); err != nil {
		return st, fmt.Errorf("save search state: %w", err)
	}
	return next, nil
}
