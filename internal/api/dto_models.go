package api

import "github.com/example/collex/internal/models"

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// FeedResponse is the home feed after applying the session's search query.
type FeedResponse struct {
	Query     string            `json:"query"`
	Searching bool              `json:"searching"`
	Listings  []*models.Listing `json:"listings"`
}

// UploadResponse carries the public URL of an uploaded image.
type UploadResponse struct {
	URL string `json:"url"`
}

// ProfileResponse is the profile screen: the profile and its field editor.
type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
	Created bool            `json:"created,omitempty"`
	Editing string          `json:"editing,omitempty"`
}
