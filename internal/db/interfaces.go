package db

import (
	"context"
	"errors"

	"github.com/example/collex/internal/models"
)

var (
	// ErrNotFound is returned when a document does not exist, or when an
	// owner-scoped lookup or write does not match the caller.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when creating a document whose ID is taken.
	ErrAlreadyExists = errors.New("document already exists")
)

// ListingRepository defines listing storage operations.
// List results are ordered by creation time, newest first.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) (string, error) // Returns new listing ID
	GetByID(ctx context.Context, listingID string) (*models.Listing, error)
	GetOwned(ctx context.Context, listingID, ownerID string) (*models.Listing, error)
	ListAll(ctx context.Context) ([]*models.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error)
	UpdateOwned(ctx context.Context, listingID, ownerID string, update models.ListingUpdate) error
	DeleteOwned(ctx context.Context, listingID, ownerID string) error
	ListCategories(ctx context.Context) ([]string, error)
}

// ProfileRepository defines profile storage operations. Profiles are keyed by user ID.
type ProfileRepository interface {
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error
}

// AuditRepository defines the interface for audit log data storage operations.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
