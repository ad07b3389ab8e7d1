package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/rental-api/internal/domain"
)

// ---- responses -------------------------------------------------------------

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type listingResponse struct {
	ListingID     uuid.UUID        `json:"listing_id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Location      string           `json:"location"`
	PricePerNight domain.Money     `json:"price_per_night"`
	Bedrooms      int              `json:"bedrooms"`
	Bathrooms     int              `json:"bathrooms"`
	MaxGuests     int              `json:"max_guests"`
	Host          userResponse     `json:"host"`
	IsAvailable   bool             `json:"is_available"`
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
	Reviews       []reviewResponse `json:"reviews"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type bookingResponse struct {
	BookingID      uuid.UUID            `json:"booking_id"`
	ListingID      uuid.UUID            `json:"listing_id"`
	User           userResponse         `json:"user"`
	CheckInDate    openapi_types.Date   `json:"check_in_date"`
	CheckOutDate   openapi_types.Date   `json:"check_out_date"`
	NumberOfGuests int                  `json:"number_of_guests"`
	TotalPrice     domain.Money         `json:"total_price"`
	Status         domain.BookingStatus `json:"status"`
	Nights         int                  `json:"nights"`
	Listing        *listingResponse     `json:"listing"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type reviewResponse struct {
	ReviewID  uuid.UUID    `json:"review_id"`
	ListingID uuid.UUID    `json:"listing_id"`
	User      userResponse `json:"user"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func userToResponse(u domain.UserRef) userResponse {
	return userResponse{ID: u.ID, Username: u.Username}
}

func listingToResponse(l domain.Listing) listingResponse {
	return listingResponse{
		ListingID:     l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		MaxGuests:     l.MaxGuests,
		Host:          userToResponse(l.Host),
		IsAvailable:   l.IsAvailable,
		AverageRating: l.AverageRating,
		TotalReviews:  l.TotalReviews,
		Reviews:       mapAll(l.Reviews, reviewToResponse),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func bookingToResponse(b domain.Booking) bookingResponse {
	var listing *listingResponse
	if b.Listing != nil {
		lr := listingToResponse(*b.Listing)
		listing = &lr
	}
	return bookingResponse{
		BookingID:      b.ID,
		ListingID:      b.ListingID,
		User:           userToResponse(b.User),
		CheckInDate:    openapi_types.Date{Time: b.CheckIn},
		CheckOutDate:   openapi_types.Date{Time: b.CheckOut},
		NumberOfGuests: b.NumberOfGuests,
		TotalPrice:     b.TotalPrice,
		Status:         b.Status,
		Nights:         b.Nights(),
		Listing:        listing,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func reviewToResponse(r domain.Review) reviewResponse {
	return reviewResponse{
		ReviewID:  r.ID,
		ListingID: r.ListingID,
		User:      userToResponse(r.User),
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// mapAll converts a slice with f. The result is never nil so that empty
// collections encode as [].
func mapAll[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

// ---- requests --------------------------------------------------------------
//
// Each resource has a full request (POST and PUT) whose fields are required
// and a patch request (PATCH) whose fields are all optional. Read-only fields
// such as host, user, average_rating, or total_price are not decoded at all.

type listingRequest struct {
	Title         *string       `json:"title" validate:"required,notblank,nonul,max=255"`
	Description   *string       `json:"description" validate:"required,notblank,nonul"`
	Location      *string       `json:"location" validate:"required,notblank,nonul,max=255"`
	PricePerNight *domain.Money `json:"price_per_night" validate:"required,min=0"`
	Bedrooms      *int          `json:"bedrooms" validate:"required,min=0"`
	Bathrooms     *int          `json:"bathrooms" validate:"required,min=0"`
	MaxGuests     *int          `json:"max_guests" validate:"required,min=1"`
	IsAvailable   *bool         `json:"is_available"`
}

type listingPatchRequest struct {
	Title         *string       `json:"title" validate:"omitempty,notblank,nonul,max=255"`
	Description   *string       `json:"description" validate:"omitempty,notblank,nonul"`
	Location      *string       `json:"location" validate:"omitempty,notblank,nonul,max=255"`
	PricePerNight *domain.Money `json:"price_per_night" validate:"omitempty,min=0"`
	Bedrooms      *int          `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms     *int          `json:"bathrooms" validate:"omitempty,min=0"`
	MaxGuests     *int          `json:"max_guests" validate:"omitempty,min=1"`
	IsAvailable   *bool         `json:"is_available"`
}

func (req listingRequest) patch() domain.ListingPatch {
	return domain.ListingPatch{
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		MaxGuests:     req.MaxGuests,
		IsAvailable:   req.IsAvailable,
	}
}

func (req listingPatchRequest) patch() domain.ListingPatch {
	return listingRequest(req).patch()
}

type bookingRequest struct {
	ListingID      *uuid.UUID            `json:"listing_id" validate:"required"`
	CheckInDate    *openapi_types.Date   `json:"check_in_date" validate:"required"`
	CheckOutDate   *openapi_types.Date   `json:"check_out_date" validate:"required"`
	NumberOfGuests *int                  `json:"number_of_guests" validate:"required,min=1"`
	Status         *domain.BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

type bookingPatchRequest struct {
	ListingID      *uuid.UUID            `json:"listing_id"`
	CheckInDate    *openapi_types.Date   `json:"check_in_date"`
	CheckOutDate   *openapi_types.Date   `json:"check_out_date"`
	NumberOfGuests *int                  `json:"number_of_guests" validate:"omitempty,min=1"`
	Status         *domain.BookingStatus `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

func (req bookingRequest) patch() domain.BookingPatch {
	p := domain.BookingPatch{
		ListingID:      req.ListingID,
		NumberOfGuests: req.NumberOfGuests,
		Status:         req.Status,
	}
	if req.CheckInDate != nil {
		p.CheckIn = &req.CheckInDate.Time
	}
	if req.CheckOutDate != nil {
		p.CheckOut = &req.CheckOutDate.Time
	}
	return p
}

func (req bookingPatchRequest) patch() domain.BookingPatch {
	return bookingRequest(req).patch()
}

type reviewRequest struct {
	ListingID *uuid.UUID `json:"listing_id" validate:"required"`
	Rating    *int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string    `json:"comment" validate:"required,notblank,nonul"`
}

type reviewPatchRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,notblank,nonul"`
}

func (req reviewPatchRequest) patch() domain.ReviewPatch {
	return domain.ReviewPatch{Rating: req.Rating, Comment: req.Comment}
}
