package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/collex/internal/models"
)

const profilesCollection = "profiles"

// firestoreProfileRepository implements ProfileRepository using Firestore.
type firestoreProfileRepository struct {
	client *firestore.Client
}

// NewFirestoreProfileRepository creates a new instance of firestoreProfileRepository.
func NewFirestoreProfileRepository(client *firestore.Client) (ProfileRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for ProfileRepository")
	}
	return &firestoreProfileRepository{client: client}, nil
}

// GetByID retrieves the profile of a user.
func (r *firestoreProfileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("profile '%s': %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile '%s': %w", userID, err)
	}

	var profile models.Profile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile '%s': %w", userID, err)
	}
	profile.ID = snap.Ref.ID
	return &profile, nil
}

// Create inserts a profile. The profile ID is used as the document ID.
func (r *firestoreProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		return errors.New("profile ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(profilesCollection).Doc(profile.ID).Create(ctx, profile)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("profile '%s': %w", profile.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create profile '%s': %w", profile.ID, err)
	}
	return nil
}

// UpdateFields merges the given Firestore fields into a profile, creating it if missing.
func (r *firestoreProfileRepository) UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error {
	if userID == "" {
		return errors.New("userID cannot be empty for UpdateFields operation")
	}
	if len(fields) == 0 {
		return nil
	}
	if _, err := r.client.Collection(profilesCollection).Doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update profile '%s': %w", userID, err)
	}
	return nil
}
