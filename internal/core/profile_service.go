package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/collex/internal/db"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/pkg/cache"
)

// Firestore field names of the profile document.
var profileFieldPaths = map[models.ProfileField]string{
	models.ProfileFieldName:        "name",
	models.ProfileFieldContactInfo: "contactInfo",
	models.ProfileFieldLocation:    "location",
}

// profileService implements the ProfileService interface.
type profileService struct {
	profileRepo db.ProfileRepository
	media       MediaService
	sealer      ContactSealer
	audit       AuditService
	edits       *editStore
	logger      *zap.Logger
}

// NewProfileService creates a new ProfileService. Field edit state is kept
// in c for editTTL after the last change.
func NewProfileService(
	pr db.ProfileRepository,
	ms MediaService,
	sealer ContactSealer,
	as AuditService,
	c cache.Cache,
	editTTL time.Duration,
	logger *zap.Logger,
) ProfileService {
	return &profileService{
		profileRepo: pr,
		media:       ms,
		sealer:      sealer,
		audit:       as,
		edits:       &editStore{cache: c, ttl: editTTL},
		logger:      logger,
	}
}

// Get returns a profile with its contact info opened.
func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	s.openContact(profile)
	return profile, nil
}

// GetOrCreate returns the user's profile, creating it on first visit with a
// name taken from the email address.
func (s *profileService) GetOrCreate(ctx context.Context, user models.AuthUser) (*models.Profile, bool, error) {
	profile, err := s.Get(ctx, user.ID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, false, err
	}

	profile = &models.Profile{ID: user.ID, Name: EmailLocalPart(user.Email)}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			existing, getErr := s.Get(ctx, user.ID)
			return existing, false, getErr
		}
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("Profile created", zap.String("userID", user.ID))
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID:     user.ID,
		Action:     models.AuditProfileCreate,
		TargetType: models.AuditTargetProfile,
		TargetID:   user.ID,
	})
	return profile, true, nil
}

// Save writes name, contact info and location together. The avatar is kept.
func (s *profileService) Save(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	fields := map[string]interface{}{
		"name":     strings.TrimSpace(req.Name),
		"location": optional(req.Location),
	}
	contact, err := s.sealContact(optional(req.ContactInfo))
	if err != nil {
		return nil, err
	}
	fields["contactInfo"] = contact

	return s.writeFields(ctx, userID, fields)
}

func (s *profileService) StartEdit(ctx context.Context, sessionID string, field models.ProfileField) (EditState, error) {
	st, err := s.edits.load(ctx, sessionID)
	if err != nil {
		return EditState{}, err
	}
	next, err := st.Start(field)
	if err != nil {
		return st, err
	}
	if err := s.edits.save(ctx, sessionID, next); err != nil {
		return st, err
	}
	return next, nil
}

func (s *profileService) CancelEdit(ctx context.Context, sessionID string) (EditState, error) {
	st := EditState{}.Cancel()
	if err := s.edits.save(ctx, sessionID, st); err != nil {
		return EditState{}, err
	}
	return st, nil
}

func (s *profileService) EditState(ctx context.Context, sessionID string) (EditState, error) {
	return s.edits.load(ctx, sessionID)
}

// CommitField saves the value of the field being edited and returns the
// editor to idle. Committing any other field fails with ErrNotEditingField.
func (s *profileService) CommitField(ctx context.Context, sessionID, userID string, field models.ProfileField, value string) (*models.Profile, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfileField, field)
	}
	st, err := s.edits.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !st.Editing(field) {
		return nil, ErrNotEditingField
	}

	value = strings.TrimSpace(value)
	var stored interface{}
	switch field {
	case models.ProfileFieldName:
		if value == "" {
			return nil, invalid("Name cannot be empty")
		}
		stored = value
	case models.ProfileFieldContactInfo:
		sealed, err := s.sealContact(optional(&value))
		if err != nil {
			return nil, err
		}
		stored = sealed
	default:
		stored = optional(&value)
	}

	profile, err := s.writeFields(ctx, userID, map[string]interface{}{profileFieldPaths[field]: stored})
	if err != nil {
		return nil, err
	}
	if err := s.edits.save(ctx, sessionID, st.Cancel()); err != nil {
		s.logger.Warn("Failed to reset profile edit state", zap.String("sessionID", sessionID), zap.Error(err))
	}
	return profile, nil
}

// UploadAvatar stores a new avatar image and points the profile at it.
func (s *profileService) UploadAvatar(ctx context.Context, userID string, file models.FileUpload) (*models.Profile, error) {
	url, err := s.media.UploadAvatar(ctx, userID, file)
	if err != nil {
		return nil, err
	}
	return s.writeFields(ctx, userID, map[string]interface{}{"avatarUrl": url})
}

func (s *profileService) writeFields(ctx context.Context, userID string, fields map[string]interface{}) (*models.Profile, error) {
	if err := s.profileRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	recordAudit(ctx, s.audit, s.logger, models.AuditLog{
		UserID:     userID,
		Action:     models.AuditProfileUpdate,
		TargetType: models.AuditTargetProfile,
		TargetID:   userID,
		Details:    map[string]interface{}{"fields": fieldNames(fields)},
	})
	return s.Get(ctx, userID)
}

// sealContact encrypts a non-nil contact value.
func (s *profileService) sealContact(contact *string) (*string, error) {
	if contact == nil {
		return nil, nil
	}
	sealed, err := s.sealer.Seal(*contact)
	if err != nil {
		return nil, fmt.Errorf("failed to seal contact info: %w", err)
	}
	return &sealed, nil
}

func (s *profileService) openContact(p *models.Profile) {
	if p.ContactInfo == nil {
		return
	}
	plain, err := s.sealer.Open(*p.ContactInfo)
	if err != nil {
		s.logger.Warn("Unreadable contact info", zap.String("userID", p.ID), zap.Error(err))
		p.ContactInfo = nil
		return
	}
	p.ContactInfo = &plain
}

// optional trims v and maps blank to nil.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
