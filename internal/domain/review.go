package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a guest's rating of a listing. A user may review a listing once.
type Review struct {
	ID        uuid.UUID
	ListingID uuid.UUID
	User      UserRef
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewOrderFields are the keys accepted by the review ordering parameter.
var ReviewOrderFields = []string{"rating", "created_at"}

// DefaultReviewOrder is newest first.
var DefaultReviewOrder = []OrderField{{Field: "created_at", Desc: true}}

// ReviewQuery filters review collections.
type ReviewQuery struct {
	ListingID  *uuid.UUID
	UserID     *uuid.UUID
	Rating     *int
	Ordering   []OrderField
	Pagination PaginationParams
}

// ReviewPatch carries the mutable fields of a review update.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

// Apply copies every non-nil field of p onto r.
func (p ReviewPatch) Apply(r Review) Review {
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Comment != nil {
		r.Comment = *p.Comment
	}
	return r
}
