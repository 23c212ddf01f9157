package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/pkg/cache"
)

const sessionKeyPrefix = "session:"

// ErrNoSession is returned when no session record exists for an ID.
var ErrNoSession = errors.New("no session")

// Store keeps session records in a cache, keyed by browser session ID.
type Store struct {
	cache cache.Cache
	now   func() time.Time
}

// NewStore creates a session Store.
func NewStore(c cache.Cache) *Store {
	return &Store{cache: c, now: time.Now}
}

// Get returns the session record, or ErrNoSession when absent or expired.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if raw == "" {
		return nil, ErrNoSession
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Put stores a session record until its expiry.
func (s *Store) Put(ctx context.Context, sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	return s.cache.Set(ctx, sessionKeyPrefix+sess.ID, string(raw), ttl)
}

// Delete removes a session record.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionKeyPrefix+sessionID)
}
