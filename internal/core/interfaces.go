package core

import (
	"context"
	"time"

	"github.com/example/collex/internal/identity"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/session"
)

// ListingService covers the listing lifecycle.
type ListingService interface {
	CreateListing(ctx context.Context, owner models.AuthUser, req models.CreateListingRequest, image *models.FileUpload) (*models.Listing, error)
	GetFeed(ctx context.Context) ([]*models.Listing, error)
	GetListingDetail(ctx context.Context, listingID string) (*models.ListingDetail, error)
	LoadForEdit(ctx context.Context, userID, listingID string) (*EditListingView, error)
	UpdateListing(ctx context.Context, userID, listingID string, req models.UpdateListingRequest, image *models.FileUpload) (*models.Listing, error)
	ListMine(ctx context.Context, userID string) ([]*models.Listing, error)
	DeleteListing(ctx context.Context, userID, listingID string) error
	PopularCategories(ctx context.Context, n int) ([]string, error)
}

// EditListingView is what the edit screen loads: the owned listing and
// whether the owner's profile allows saving it.
type EditListingView struct {
	Listing         *models.Listing `json:"listing"`
	Profile         *models.Profile `json:"profile,omitempty"`
	ProfileComplete bool            `json:"profile_complete"`
	Notice          string          `json:"notice,omitempty"`
}

// ProfileService covers the profile screen and the profile gate.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	GetOrCreate(ctx context.Context, user models.AuthUser) (*models.Profile, bool, error)
	Save(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error)
	StartEdit(ctx context.Context, sessionID string, field models.ProfileField) (EditState, error)
	CancelEdit(ctx context.Context, sessionID string) (EditState, error)
	EditState(ctx context.Context, sessionID string) (EditState, error)
	CommitField(ctx context.Context, sessionID, userID string, field models.ProfileField, value string) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID string, file models.FileUpload) (*models.Profile, error)
}

// MediaService uploads images and resolves their public URLs.
type MediaService interface {
	UploadListingImage(ctx context.Context, userID string, file models.FileUpload) (string, error)
	UploadAvatar(ctx context.Context, userID string, file models.FileUpload) (string, error)
}

// AuthService covers sign-up, sign-in and session upkeep. It never sets
// session state itself; it publishes auth events.
type AuthService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) error
	SignIn(ctx context.Context, sessionID string, req models.SignInRequest) error
	SignOut(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (*models.Session, error)
	VerifyIDToken(ctx context.Context, idToken string) (*models.AuthUser, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// IdentityProvider is the hosted auth service.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (*models.AuthUser, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	SignIn(ctx context.Context, email, password string) (*identity.Credentials, error)
	CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, cookie string) (*models.AuthUser, error)
	VerifyIDToken(ctx context.Context, idToken string) (*models.AuthUser, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// SessionStore keeps server-side session records.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Put(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, sessionID string) error
}

// AuthEventPublisher delivers auth events to the session gate.
type AuthEventPublisher interface {
	Publish(ctx context.Context, ev session.Event) error
}

// ContactSealer seals profile contact info at rest.
type ContactSealer interface {
	Seal(plainText string) (string, error)
	Open(sealed string) (string, error)
}
