package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/pkg/cache"
)

const myListingsKeyPrefix = "my-listings:"

// myListingsSnapshot keeps the last my-listings list shown to a session so a
// delete can update it without re-fetching.
type myListingsSnapshot struct {
	cache cache.Cache
	ttl   time.Duration
}

func (s *myListingsSnapshot) load(ctx context.Context, sessionID string) ([]*models.Listing, bool, error) {
	raw, err := s.cache.Get(ctx, myListingsKeyPrefix+sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("load my-listings snapshot: %w", err)
	}
	if raw == "" {
		return nil, false, nil
	}
	var listings []*models.Listing
	if err := json.Unmarshal([]byte(raw), &listings); err != nil {
		return nil, false, nil
	}
	return listings, true, nil
}

// save stores listings unless ctx is already done.
func (s *myListingsSnapshot) save(ctx context.Context, sessionID string, listings []*models.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode my-listings snapshot: %w", err)
	}
	return s.cache.Set(ctx, myListingsKeyPrefix+sessionID, string(raw), s.ttl)
}

// RemoveListing returns listings without the entry whose ID is id, keeping
// the order of the rest. The input slice is not modified.
func RemoveListing(listings []*models.Listing, id string) []*models.Listing {
	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l != nil && l.ID == id {
			continue
		}
		out = append(out, l)
	}
	return out
}
