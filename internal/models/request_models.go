package models

// CreateListingRequest is the add-listing form. Price is kept as raw text.
type CreateListingRequest struct {
	OwnerName   string `json:"owner_name" form:"owner_name"`
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	ImageURL    string `json:"image_url" form:"image_url"`
	Category    string `json:"category" form:"category"`
	Location    string `json:"location" form:"location"`
}

// UpdateListingRequest is the edit-listing form. Owner name and location
// are taken from the current profile.
type UpdateListingRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
	Category    string `json:"category" form:"category"`
}

// UpdateProfileRequest saves all profile fields at once.
type UpdateProfileRequest struct {
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
	Location    *string `json:"location"`
}

// UpdateProfileFieldRequest commits the field currently being edited.
type UpdateProfileFieldRequest struct {
	Value string `json:"value"`
}

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password"`
}

// SignInRequest is the login form.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SearchQueryRequest sets the shared search text.
type SearchQueryRequest struct {
	Query string `json:"query"`
}

// SearchKeyRequest forwards a key press from the search box.
type SearchKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// SearchSuggestionRequest picks a suggestion.
type SearchSuggestionRequest struct {
	Suggestion string `json:"suggestion" binding:"required"`
}
