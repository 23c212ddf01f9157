package models

import "time"

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // Who performed the action
	Action     string                 `json:"action" firestore:"action"` // e.g., "LISTING_CREATE", "PROFILE_UPDATE"
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}

const (
	AuditListingCreate = "LISTING_CREATE"
	AuditListingUpdate = "LISTING_UPDATE"
	AuditListingDelete = "LISTING_DELETE"
	AuditProfileCreate = "PROFILE_CREATE"
	AuditProfileUpdate = "PROFILE_UPDATE"

	AuditTargetListing = "LISTING"
	AuditTargetProfile = "PROFILE"
)
