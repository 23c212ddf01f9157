package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/collex/internal/models"
	"github.com/example/collex/pkg/cache"
)

const editKeyPrefix = "profile-edit:"

// EditState is the per-session profile field editor: idle, or editing
// exactly one field.
type EditState struct {
	Field models.ProfileField `json:"field,omitempty"`
}

// Idle reports whether no field is being edited.
func (s EditState) Idle() bool { return s.Field == "" }

// Editing reports whether f is the field being edited.
func (s EditState) Editing(f models.ProfileField) bool { return !s.Idle() && s.Field == f }

// Start switches to editing f, abandoning any other field.
func (s EditState) Start(f models.ProfileField) (EditState, error) {
	if !f.Valid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownProfileField, f)
	}
	return EditState{Field: f}, nil
}

// Cancel returns to idle.
func (s EditState) Cancel() EditState { return EditState{} }

// editStore keeps EditState per browser session.
type editStore struct {
	cache cache.Cache
	ttl   time.Duration
}

func (s *editStore) load(ctx context.Context, sessionID string) (EditState, error) {
	raw, err := s.cache.Get(ctx, editKeyPrefix+sessionID)
	if err != nil {
		return EditState{}, fmt.Errorf("load edit state: %w", err)
	}
	var st EditState
	if raw == "" || json.Unmarshal([]byte(raw), &st) != nil || (!st.Idle() && !st.Field.Valid()) {
		return EditState{}, nil
	}
	return st, nil
}

func (s *editStore) save(ctx context.Context, sessionID string, st EditState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st.Idle() {
		return s.cache.Delete(ctx, editKeyPrefix+sessionID)
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode edit state: %w", err)
	}
	return s.cache.Set(ctx, editKeyPrefix+sessionID, string(raw), s.ttl)
}

// FieldUpdatedMessage is shown after a field commit succeeds.
func FieldUpdatedMessage(f models.ProfileField) string {
	return f.Label() + " updated successfully!"
}
