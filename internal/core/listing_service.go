package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/collex/internal/db"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/search"
)

// ListingObserver counts successful listing writes by action.
type ListingObserver interface {
	ObserveListing(action string)
}

// listingService implements the ListingService interface.
type listingService struct {
	listingRepo db.ListingRepository
	profiles    ProfileService
	media       MediaService
	audit       AuditService
	events      ListingEventPublisher
	observer    ListingObserver
	logger      *zap.Logger
}

// NewListingService creates a new ListingService instance. events and
// observer may be nil.
func NewListingService(
	lr db.ListingRepository,
	ps ProfileService,
	ms MediaService,
	as AuditService,
	events ListingEventPublisher,
	observer ListingObserver,
	logger *zap.Logger,
) ListingService {
	return &listingService{
		listingRepo: lr,
		profiles:    ps,
		media:       ms,
		audit:       as,
		events:      events,
		observer:    observer,
		logger:      logger,
	}
}

// CreateListing validates the form, uploads the image file if one was
// attached and stores the listing owned by owner. Nothing remote is called
// when validation fails.
func (s *listingService) CreateListing(ctx context.Context, owner models.AuthUser, req models.CreateListingRequest, image *models.FileUpload) (*models.Listing, error) {
	listing, err := ValidateNewListing(req, image != nil || !blank(req.ImageURL))
	if err != nil {
		return nil, err
	}

	imageURL := strings.TrimSpace(req.ImageURL)
	if image != nil {
		imageURL, err = s.media.UploadListingImage(ctx, owner.ID, *image)
		if err != nil {
			return nil, err
		}
	}
	listing.ImageURL = &imageURL
	listing.OwnerID = owner.ID

	id, err := s.listingRepo.Create(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	listing.ID = id

	s.logger.Info("Listing created", zap.String("listingID", id), zap.String("ownerID", owner.ID))
	s.afterWrite(ctx, ListingCreated, models.AuditListingCreate, listing, owner.Email)
	return listing, nil
}

// GetFeed returns every listing, newest first.
func (s *listingService) GetFeed(ctx context.Context) ([]*models.Listing, error) {
	listings, err := s.listingRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// GetListingDetail returns a listing and, when it exists, its seller's profile.
func (s *listingService) GetListingDetail(ctx context.Context, listingID string) (*models.ListingDetail, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, mapListingError(err)
	}
	detail := &models.ListingDetail{Listing: listing}

	seller, err := s.profiles.Get(ctx, listing.OwnerID)
	switch {
	case err == nil:
		detail.Seller = seller
	case errors.Is(err, ErrProfileNotFound):
	default:
		s.logger.Warn("Failed to load seller profile", zap.String("listingID", listingID), zap.Error(err))
	}
	return detail, nil
}

// LoadForEdit returns a listing only if userID owns it, along with the
// profile gate status.
func (s *listingService) LoadForEdit(ctx context.Context, userID, listingID string) (*EditListingView, error) {
	listing, err := s.listingRepo.GetOwned(ctx, listingID, userID)
	if err != nil {
		return nil, mapListingError(err)
	}
	view := &EditListingView{Listing: listing}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	view.Profile = profile
	view.ProfileComplete = ProfileComplete(profile)
	if !view.ProfileComplete {
		view.Notice = MsgProfileIncomplete
	}
	return view, nil
}

// UpdateListing applies an owner-scoped edit. The owner's profile must carry
// a name and a location, which overwrite the listing's copies.
func (s *listingService) UpdateListing(ctx context.Context, userID, listingID string, req models.UpdateListingRequest, image *models.FileUpload) (*models.Listing, error) {
	update, err := ValidateListingEdit(req)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	if !ProfileComplete(profile) {
		return nil, ErrProfileIncomplete
	}
	update.OwnerName = strings.TrimSpace(profile.Name)
	update.Location = strings.TrimSpace(*profile.Location)

	if image != nil {
		url, err := s.media.UploadListingImage(ctx, userID, *image)
		if err != nil {
			return nil, err
		}
		update.ImageURL = &url
	}

	if err := s.listingRepo.UpdateOwned(ctx, listingID, userID, update); err != nil {
		return nil, mapListingError(err)
	}

	listing, err := s.listingRepo.GetOwned(ctx, listingID, userID)
	if err != nil {
		return nil, mapListingError(err)
	}
	s.logger.Info("Listing updated", zap.String("listingID", listingID), zap.String("ownerID", userID))
	s.afterWrite(ctx, ListingUpdated, models.AuditListingUpdate, listing, "")
	return listing, nil
}

// ListMine returns the caller's listings, newest first.
func (s *listingService) ListMine(ctx context.Context, userID string) ([]*models.Listing, error) {
	listings, err := s.listingRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings of user %s: %w", userID, err)
	}
	return listings, nil
}

// DeleteListing removes a listing owned by userID.
func (s *listingService) DeleteListing(ctx context.Context, userID, listingID string) error {
	if err := s.listingRepo.DeleteOwned(ctx, listingID, userID); err != nil {
		return mapListingError(err)
	}
	s.logger.Info("Listing deleted", zap.String("listingID", listingID), zap.String("ownerID", userID))
	s.afterWrite(ctx, ListingDeleted, models.AuditListingDelete, &models.Listing{ID: listingID, OwnerID: userID}, "")
	return nil
}

// PopularCategories returns up to n categories ranked by listing count.
func (s *listingService) PopularCategories(ctx context.Context, n int) ([]string, error) {
	categories, err := s.listingRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return search.PopularCategories(categories, n), nil
}

// afterWrite records the audit entry, the lifecycle event and the metric of
// a successful write. None of them can fail the write.
func (s *listingService) afterWrite(ctx context.Context, kind ListingEventType, action string, l *models.Listing, ownerEmail string) {
	details := map[string]interface{}{}
	if l.Title != "" {
		details["title"] = l.Title
	}
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID:     l.OwnerID,
		Action:     action,
		TargetType: models.AuditTargetListing,
		TargetID:   l.ID,
		Details:    details,
	})
	publishListingEvent(ctx, s.events, s.logger, ListingEvent{
		Type:       kind,
		ListingID:  l.ID,
		OwnerID:    l.OwnerID,
		OwnerEmail: ownerEmail,
		Title:      l.Title,
		OccurredAt: time.Now().UTC(),
	})
	if s.observer != nil {
		s.observer.ObserveListing(string(kind))
	}
}

func mapListingError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrListingNotFound, err)
	}
	return err
}
