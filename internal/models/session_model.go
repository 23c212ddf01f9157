package models

import "time"

// AuthUser is the identity of a signed-in account.
type AuthUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Session is the server-side record behind a browser session cookie.
type Session struct {
	ID            string    `json:"id"`
	User          AuthUser  `json:"user"`
	SessionCookie string    `json:"session_cookie"` // Firebase session cookie
	ExpiresAt     time.Time `json:"expires_at"`
}

// FileUpload is an uploaded file held in memory.
type FileUpload struct {
	Filename string
	Data     []byte
}
