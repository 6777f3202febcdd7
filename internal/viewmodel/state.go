package viewmodel

import (
	"strings"

	"auction-house/internal/models"
)

// ListingState is the in-memory listing set a page controller owns for
// the duration of one render. It is passed by reference into both the
// filter and the render path so the two always see the same data.
type ListingState struct {
	All []models.Listing
}

// NewListingState wraps a freshly fetched listing slice.
func NewListingState(listings []models.Listing) *ListingState {
	return &ListingState{All: listings}
}

// Filter returns the listings whose title or description contains the
// query as a case-insensitive substring. The empty query returns the
// underlying slice unchanged, same elements and order.
func (s *ListingState) Filter(query string) []models.Listing {
	if query == "" {
		return s.All
	}

	needle := strings.ToLower(query)
	matched := make([]models.Listing, 0, len(s.All))
	for _, l := range s.All {
		if strings.Contains(strings.ToLower(l.Title), needle) ||
			strings.Contains(strings.ToLower(l.Description), needle) {
			matched = append(matched, l)
		}
	}
	return matched
}
