// Package search holds the listing filter and the per-session search state
// shared by the navigation bar and the feed.
package search

import (
	"strings"

	"github.com/example/collex/internal/models"
)

// Filter returns the listings whose title, category, location or owner name
// contains query, ignoring case. Input order is preserved. A blank query
// returns listings unchanged.
func Filter(listings []*models.Listing, query string) []*models.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return listings
	}

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, q) {
			out = append(out, l)
		}
	}
	return out
}

// Matches reports whether any searchable field of l contains the lower-cased,
// trimmed query q. A nil listing never matches.
func Matches(l *models.Listing, q string) bool {
	if l == nil {
		return false
	}
	for _, field := range [...]string{l.Title, l.Category, l.Location, l.OwnerName} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
