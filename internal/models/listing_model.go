package models

import "time"

// DefaultCategory is stored when a listing is saved without a category.
const DefaultCategory = "Misc"

// Listing is an item offered for sale by a signed-in student.
type Listing struct {
	ID          string    `json:"id" firestore:"-"` // Document ID, auto-generated
	Title       string    `json:"title" firestore:"title"`
	OwnerName   string    `json:"owner_name" firestore:"ownerName"` // Copy of the owner's profile name at last write
	Description string    `json:"description" firestore:"description"`
	Price       float64   `json:"price" firestore:"price"`
	ImageURL    *string   `json:"image_url" firestore:"imageUrl"`
	Category    string    `json:"category" firestore:"category"`
	Location    string    `json:"location" firestore:"location"`
	OwnerID     string    `json:"owner_id" firestore:"ownerId"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// ListingUpdate carries the fields rewritten by an owner-scoped edit.
// A nil ImageURL keeps the stored image.
type ListingUpdate struct {
	Title       string
	Description string
	Price       float64
	Category    string
	OwnerName   string
	Location    string
	ImageURL    *string
}

// ListingDetail is a listing together with its seller's public profile.
type ListingDetail struct {
	Listing *Listing `json:"listing"`
	Seller  *Profile `json:"seller,omitempty"`
}
