package core

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/collex/internal/models"
)

const minPasswordLength = 6

// ParsePrice accepts finite numbers greater than zero.
func ParsePrice(raw string) (float64, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, false
	}
	return price, true
}

// NormalizeCategory trims a category and falls back to the default.
func NormalizeCategory(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return models.DefaultCategory
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateNewListing checks the add-listing form and returns the listing to
// store, without owner ID or image URL. hasImage reports whether an image was
// supplied either as an uploaded URL or as a file.
func ValidateNewListing(req models.CreateListingRequest, hasImage bool) (*models.Listing, error) {
	if blank(req.OwnerName) || blank(req.Title) || blank(req.Description) ||
		blank(req.Price) || !hasImage || blank(req.Location) {
		return nil, invalid(MsgCreateListingInvalid)
	}
	price, ok := ParsePrice(req.Price)
	if !ok {
		return nil, invalid(MsgCreateListingInvalid)
	}
	return &models.Listing{
		Title:       strings.TrimSpace(req.Title),
		OwnerName:   strings.TrimSpace(req.OwnerName),
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		Category:    NormalizeCategory(req.Category),
		Location:    strings.TrimSpace(req.Location),
	}, nil
}

// ValidateListingEdit checks the edit-listing form. Owner name, location and
// image are filled in by the caller.
func ValidateListingEdit(req models.UpdateListingRequest) (models.ListingUpdate, error) {
	if blank(req.Title) || blank(req.Description) {
		return models.ListingUpdate{}, invalid(MsgEditListingInvalid)
	}
	price, ok := ParsePrice(req.Price)
	if !ok {
		return models.ListingUpdate{}, invalid(MsgEditListingInvalid)
	}
	return models.ListingUpdate{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		Category:    NormalizeCategory(req.Category),
	}, nil
}

// ProfileComplete reports whether a profile may own listing updates.
func ProfileComplete(p *models.Profile) bool {
	return p != nil && !blank(p.Name) && p.Location != nil && !blank(*p.Location)
}

// EmailAllowed reports whether email ends with "@"+domain. The domain
// comparison ignores case.
func EmailAllowed(email, domain string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+strings.ToLower(domain))
}

// ValidateSignUp checks the sign-up form in display order.
func ValidateSignUp(req models.SignUpRequest, domain string) error {
	if !EmailAllowed(req.Email, domain) {
		return &DomainError{Domain: domain}
	}
	if req.Password != req.ConfirmPassword {
		return invalid(MsgPasswordsMismatch)
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return invalid(MsgPasswordTooShort)
	}
	return nil
}

// EmailLocalPart returns the text before '@', used as a default profile name.
func EmailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
