package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/collex/internal/models"
)

const listingsCollection = "listings"

// firestoreListingRepository implements ListingRepository using Firestore.
type firestoreListingRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreListingRepository creates a new instance of firestoreListingRepository.
func NewFirestoreListingRepository(client *firestore.Client, logger *zap.Logger) (ListingRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for ListingRepository")
	}
	return &firestoreListingRepository{client: client, logger: logger}, nil
}

func (r *firestoreListingRepository) col() *firestore.CollectionRef {
	return r.client.Collection(listingsCollection)
}

// doc returns nil for IDs Firestore cannot address (empty or containing '/').
func (r *firestoreListingRepository) doc(listingID string) *firestore.DocumentRef {
	if listingID == "" {
		return nil
	}
	return r.col().Doc(listingID)
}

// Create adds a listing with an auto-generated ID. CreatedAt is set server-side.
func (r *firestoreListingRepository) Create(ctx context.Context, listing *models.Listing) (string, error) {
	docRef := r.col().NewDoc()
	res, err := docRef.Create(ctx, listing)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", fmt.Errorf("listing '%s': %w", docRef.ID, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create listing: %w", err)
	}
	listing.ID = docRef.ID
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = res.UpdateTime
	}
	return docRef.ID, nil
}

// GetByID retrieves a listing regardless of owner.
func (r *firestoreListingRepository) GetByID(ctx context.Context, listingID string) (*models.Listing, error) {
	ref := r.doc(listingID)
	if ref == nil {
		return nil, fmt.Errorf("listing '%s': %w", listingID, ErrNotFound)
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("listing '%s': %w", listingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing '%s': %w", listingID, err)
	}
	return decodeListing(snap)
}

// GetOwned retrieves a listing filtered by document ID and owner ID.
// A listing owned by someone else is reported as ErrNotFound.
func (r *firestoreListingRepository) GetOwned(ctx context.Context, listingID, ownerID string) (*models.Listing, error) {
	ref := r.doc(listingID)
	if ref == nil || ownerID == "" {
		return nil, fmt.Errorf("listing '%s': %w", listingID, ErrNotFound)
	}

	iter := r.col().
		Where(firestore.DocumentID, "==", ref).
		Where("ownerId", "==", ownerID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, fmt.Errorf("listing '%s': %w", listingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing '%s' for owner: %w", listingID, err)
	}
	return decodeListing(snap)
}

// ListAll returns every listing, newest first.
func (r *firestoreListingRepository) ListAll(ctx context.Context) ([]*models.Listing, error) {
	return r.list(ctx, r.col().OrderBy("createdAt", firestore.Desc))
}

// ListByOwner returns the owner's listings, newest first.
func (r *firestoreListingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Listing, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for ListByOwner operation")
	}
	return r.list(ctx, r.col().Where("ownerId", "==", ownerID).OrderBy("createdAt", firestore.Desc))
}

func (r *firestoreListingRepository) list(ctx context.Context, query firestore.Query) ([]*models.Listing, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	listings := make([]*models.Listing, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate listings: %w", err)
		}
		listing, err := decodeListing(doc)
		if err != nil {
			r.logger.Warn("Skipping undecodable listing", zap.String("listingID", doc.Ref.ID), zap.Error(err))
			continue
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

// UpdateOwned rewrites the editable fields of a listing inside a transaction
// that re-checks ownership. A nil update.ImageURL keeps the stored image.
func (r *firestoreListingRepository) UpdateOwned(ctx context.Context, listingID, ownerID string, update models.ListingUpdate) error {
	ref := r.doc(listingID)
	if ref == nil {
		return fmt.Errorf("listing '%s': %w", listingID, ErrNotFound)
	}

	updates := []firestore.Update{
		{Path: "title", Value: update.Title},
		{Path: "description", Value: update.Description},
		{Path: "price", Value: update.Price},
		{Path: "category", Value: update.Category},
		{Path: "ownerName", Value: update.OwnerName},
		{Path: "location", Value: update.Location},
	}
	if update.ImageURL != nil {
		updates = append(updates, firestore.Update{Path: "imageUrl", Value: *update.ImageURL})
	}

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := checkOwner(tx, ref, ownerID); err != nil {
			return err
		}
		return tx.Update(ref, updates)
	})
}

// DeleteOwned removes a listing inside a transaction that re-checks ownership.
func (r *firestoreListingRepository) DeleteOwned(ctx context.Context, listingID, ownerID string) error {
	ref := r.doc(listingID)
	if ref == nil {
		return fmt.Errorf("listing '%s': %w", listingID, ErrNotFound)
	}
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := checkOwner(tx, ref, ownerID); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
}

func checkOwner(tx *firestore.Transaction, ref *firestore.DocumentRef, ownerID string) error {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("listing '%s': %w", ref.ID, ErrNotFound)
		}
		return fmt.Errorf("failed to read listing '%s': %w", ref.ID, err)
	}
	owner, err := snap.DataAt("ownerId")
	if err != nil || owner != ownerID {
		return fmt.Errorf("listing '%s': %w", ref.ID, ErrNotFound)
	}
	return nil
}

// ListCategories returns the category of every listing, newest listing first.
func (r *firestoreListingRepository) ListCategories(ctx context.Context) ([]string, error) {
	iter := r.col().Select("category").OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var categories []string
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate listing categories: %w", err)
		}
		if v, err := doc.DataAt("category"); err == nil {
			if s, ok := v.(string); ok && s != "" {
				categories = append(categories, s)
			}
		}
	}
	return categories, nil
}

func decodeListing(snap *firestore.DocumentSnapshot) (*models.Listing, error) {
	var listing models.Listing
	if err := snap.DataTo(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing '%s': %w", snap.Ref.ID, err)
	}
	listing.ID = snap.Ref.ID
	return &listing, nil
}
