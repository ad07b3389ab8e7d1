// Package service contains the business logic for the rental API.
// Services run the authorization gate, enforce business rules, and
// orchestrate repo calls. No SQL lives here; services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/repo"
)

// ListingService implements business logic for Listing operations.
// It also holds the bookings and reviews repos to serve the listing's
// sub-resources.
type ListingService struct {
	listings repo.ListingRepo
	bookings repo.BookingRepo
	reviews  repo.ReviewRepo
	policy   authz.Policy
}

// NewListingService constructs a ListingService. policy decides who may write.
func NewListingService(listings repo.ListingRepo, bookings repo.BookingRepo, reviews repo.ReviewRepo, policy authz.Policy) *ListingService {
	return &ListingService{listings: listings, bookings: bookings, reviews: reviews, policy: policy}
}

// List returns the listings matching q. Always returns a non-nil slice.
func (s *ListingService) List(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	if len(q.Ordering) == 0 {
		q.Ordering = domain.DefaultListingOrder
	}
	listings, err := s.listings.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.List: %w", err)
	}
	if listings == nil {
		return []domain.Listing{}, nil
	}
	return listings, nil
}

// Available returns every listing open for booking, newest first.
func (s *ListingService) Available(ctx context.Context) ([]domain.Listing, error) {
	return s.List(ctx, domain.AvailableListingsQuery())
}

// GetByID returns domain.ErrNotFound if the listing does not exist.
func (s *ListingService) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	result, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.GetByID: %w", err)
	}
	return result, nil
}

// Create persists a new listing hosted by caller. Any host in the input is
// ignored.
func (s *ListingService) Create(ctx context.Context, caller *domain.User, listing domain.Listing) (domain.Listing, error) {
	if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Create: %w", err)
	}
	if domain.IsAnonymous(caller) {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Create: %w", domain.ErrAuthenticationRequired)
	}
	listing.Host = domain.UserRef{ID: caller.ID, Username: caller.Username}

	if err := validateListing(listing); err != nil {
		return domain.Listing{}, err
	}
	result, err := s.listings.Create(ctx, listing)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Create: %w", err)
	}
	return result, nil
}

// Update applies patch to the listing. Anonymous callers are refused before
// the listing is looked up.
func (s *ListingService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ListingPatch) (domain.Listing, error) {
	current, err := s.authorizedListing(ctx, caller, id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Update: %w", err)
	}

	updated := patch.Apply(current)
	if err := validateListing(updated); err != nil {
		return domain.Listing{}, err
	}
	result, err := s.listings.Update(ctx, updated)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("service.ListingService.Update: %w", err)
	}
	return result, nil
}

// Delete removes the listing together with its bookings and reviews.
func (s *ListingService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if _, err := s.authorizedListing(ctx, caller, id); err != nil {
		return fmt.Errorf("service.ListingService.Delete: %w", err)
	}
	if err := s.listings.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ListingService.Delete: %w", err)
	}
	return nil
}

// Bookings returns every booking of the listing, newest first.
func (s *ListingService) Bookings(ctx context.Context, id uuid.UUID) ([]domain.Booking, error) {
	if _, err := s.listings.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("service.ListingService.Bookings: %w", err)
	}
	bookings, err := s.bookings.List(ctx, domain.BookingQuery{ListingID: &id, Ordering: domain.DefaultBookingOrder})
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.Bookings: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// Reviews returns every review of the listing, newest first.
func (s *ListingService) Reviews(ctx context.Context, id uuid.UUID) ([]domain.Review, error) {
	if _, err := s.listings.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("service.ListingService.Reviews: %w", err)
	}
	reviews, err := s.reviews.List(ctx, domain.ReviewQuery{ListingID: &id, Ordering: domain.DefaultReviewOrder})
	if err != nil {
		return nil, fmt.Errorf("service.ListingService.Reviews: %w", err)
	}
	if reviews == nil {
		return []domain.Review{}, nil
	}
	return reviews, nil
}

// authorizedListing runs the write gate twice: once without a target so that
// anonymous callers never reach the store, and once against the host.
func (s *ListingService) authorizedListing(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Listing, error) {
	if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
		return domain.Listing{}, err
	}
	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.policy.Authorize(caller, authz.Write, current.Host.ID); err != nil {
		return domain.Listing{}, err
	}
	return current, nil
}

// validateListing enforces the rules common to Create and Update.
func validateListing(l domain.Listing) error {
	switch {
	case strings.TrimSpace(l.Title) == "":
		return domain.Invalid("title", "This field may not be blank.")
	case utf8.RuneCountInString(l.Title) > 255:
		return domain.Invalid("title", "Ensure this field has no more than 255 characters.")
	case strings.TrimSpace(l.Description) == "":
		return domain.Invalid("description", "This field may not be blank.")
	case strings.TrimSpace(l.Location) == "":
		return domain.Invalid("location", "This field may not be blank.")
	case utf8.RuneCountInString(l.Location) > 255:
		return domain.Invalid("location", "Ensure this field has no more than 255 characters.")
	case l.PricePerNight < 0:
		return domain.Invalid("price_per_night", "Ensure this value is greater than or equal to 0.")
	case l.PricePerNight > domain.MaxMoney:
		return domain.Invalid("price_per_night", "Ensure that there are no more than 10 digits in total.")
	case l.Bedrooms < 0:
		return domain.Invalid("bedrooms", "Ensure this value is greater than or equal to 0.")
	case l.Bathrooms < 0:
		return domain.Invalid("bathrooms", "Ensure this value is greater than or equal to 0.")
	case l.MaxGuests < 1:
		return domain.Invalid("max_guests", "Ensure this value is greater than or equal to 1.")
	}
	return nil
}
