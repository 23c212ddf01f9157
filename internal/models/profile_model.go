package models

// Profile is the public record attached one-to-one to an authenticated user.
type Profile struct {
	ID          string  `json:"id" firestore:"-"` // Equals the Firebase Auth UID
	Name        string  `json:"name" firestore:"name"`
	AvatarURL   *string `json:"avatar_url" firestore:"avatarUrl"`
	ContactInfo *string `json:"contact_info" firestore:"contactInfo"` // Sealed at rest
	Location    *string `json:"location" firestore:"location"`
}

// ProfileField names a profile field that can be edited on its own.
type ProfileField string

const (
	ProfileFieldName        ProfileField = "name"
	ProfileFieldContactInfo ProfileField = "contact_info"
	ProfileFieldLocation    ProfileField = "location"
)

// Valid reports whether f is one of the editable profile fields.
func (f ProfileField) Valid() bool {
	switch f {
	case ProfileFieldName, ProfileFieldContactInfo, ProfileFieldLocation:
		return true
	}
	return false
}

// Label is the user-facing name of the field.
func (f ProfileField) Label() string {
	switch f {
	case ProfileFieldName:
		return "Name"
	case ProfileFieldContactInfo:
		return "Contact info"
	case ProfileFieldLocation:
		return "Location"
	}
	return string(f)
}
