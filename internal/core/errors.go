package core

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core services.
var (
	ErrValidation          = errors.New("validation failed")
	ErrListingNotFound     = errors.New("listing not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileIncomplete   = errors.New("profile incomplete")
	ErrUnknownProfileField = errors.New("unknown profile field")
	ErrNotEditingField     = errors.New("field is not being edited")
	ErrEmailDomain         = errors.New("email domain not allowed")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUpload              = errors.New("upload failed")
)

// User-facing messages.
const (
	MsgCreateListingInvalid = "Please provide the owner name, title, description, valid price, image, and location."
	MsgEditListingInvalid   = "Please provide the title, description, and valid price."
	MsgListingNotFound      = "Listing not found or you do not have permission to edit it."
	MsgProfileIncomplete    = "Please complete your profile with full name and location before updating the listing."
	MsgPasswordsMismatch    = "Passwords do not match"
	MsgPasswordTooShort     = "Password must be at least 6 characters long"
	MsgSignUpSuccess        = "Check your email for a confirmation link!"
	MsgInvalidImage         = "Please select a valid image file"
	MsgProfileSaved         = "Profile updated successfully! Redirecting to home..."
	MsgAvatarUploaded       = "Avatar uploaded successfully!"
	MsgDeleteConfirm        = "Are you sure you want to delete this listing? This action cannot be undone."
)

// ValidationError is a client-detectable input error carrying the message
// shown next to the form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// DomainError rejects an email outside the allowed domain.
type DomainError struct {
	Domain string
}

func (e *DomainError) Error() string { return fmt.Sprintf("Only @%s emails are allowed", e.Domain) }

func (e *DomainError) Is(target error) bool { return target == ErrEmailDomain }

// UploadError reports a failed upload or URL resolution.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Err }

func (e *UploadError) Is(target error) bool { return target == ErrUpload }

// UserMessage returns the message to show for err, or "" when err carries none.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Error()
	}
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Message
	}
	switch {
	case errors.Is(err, ErrListingNotFound):
		return MsgListingNotFound
	case errors.Is(err, ErrProfileIncomplete):
		return MsgProfileIncomplete
	}
	return ""
}
