package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a rentable property published by a host.
// Host is stamped once, at creation, with the creating caller and is never
// changed by updates. AverageRating and TotalReviews are derived from the
// listing's reviews and are read-only.
type Listing struct {
	ID            uuid.UUID
	Host          UserRef
	Title         string
	Description   string
	Location      string
	PricePerNight Money
	Bedrooms      int
	Bathrooms     int
	MaxGuests     int
	IsAvailable   bool
	AverageRating float64
	TotalReviews  int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Reviews are filled by repository reads, oldest first.
	Reviews []Review
}

// ListingOrderFields are the keys accepted by the listing ordering parameter.
var ListingOrderFields = []string{"price_per_night", "created_at", "title"}

// DefaultListingOrder is newest first.
var DefaultListingOrder = []OrderField{{Field: "created_at", Desc: true}}

// ListingQuery is the composed filter, search, and ordering for listing
// collections. Nil filter fields are not applied. All clauses are ANDed.
type ListingQuery struct {
	Location    *string
	IsAvailable *bool
	Bedrooms    *int
	Bathrooms   *int
	// Search holds free-text terms; each must match title, description, or
	// location case-insensitively.
	Search     []string
	Ordering   []OrderField
	Pagination PaginationParams
}

// AvailableListingsQuery is the fixed query behind the "available" view:
// only the availability filter, default ordering, no paging.
func AvailableListingsQuery() ListingQuery {
	available := true
	return ListingQuery{IsAvailable: &available, Ordering: DefaultListingOrder}
}

// ListingPatch carries the mutable listing fields of an update. PUT fills
// every field; PATCH leaves untouched fields nil. Host is deliberately absent.
type ListingPatch struct {
	Title         *string
	Description   *string
	Location      *string
	PricePerNight *Money
	Bedrooms      *int
	Bathrooms     *int
	MaxGuests     *int
	IsAvailable   *bool
}

// Apply copies every non-nil field of p onto l.
func (p ListingPatch) Apply(l Listing) Listing {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.PricePerNight != nil {
		l.PricePerNight = *p.PricePerNight
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.MaxGuests != nil {
		l.MaxGuests = *p.MaxGuests
	}
	if p.IsAvailable != nil {
		l.IsAvailable = *p.IsAvailable
	}
	return l
}
