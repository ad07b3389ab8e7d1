package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/events"
	"github.com/pkordes/rental-api/internal/repo"
)

// BookingService implements business logic for Booking operations,
// including the confirm and cancel status transitions.
type BookingService struct {
	bookings  repo.BookingRepo
	listings  repo.ListingRepo
	policy    authz.Policy
	publisher events.Publisher
	logger    *slog.Logger
}

// NewBookingService constructs a BookingService. Lifecycle events go to
// publisher; publish failures are logged to logger and otherwise ignored.
func NewBookingService(bookings repo.BookingRepo, listings repo.ListingRepo, policy authz.Policy, publisher events.Publisher, logger *slog.Logger) *BookingService {
	return &BookingService{
		bookings:  bookings,
		listings:  listings,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns the bookings matching q. Always returns a non-nil slice.
func (s *BookingService) List(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error) {
	if len(q.Ordering) == 0 {
		q.Ordering = domain.DefaultBookingOrder
	}
	bookings, err := s.bookings.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.List: %w", err)
	}
	if bookings == nil {
		return []domain.Booking{}, nil
	}
	return bookings, nil
}

// Mine returns the caller's own bookings, newest first.
// Returns domain.ErrAuthenticationRequired for an anonymous caller.
func (s *BookingService) Mine(ctx context.Context, caller *domain.User) ([]domain.Booking, error) {
	if domain.IsAnonymous(caller) {
		return nil, fmt.Errorf("service.BookingService.Mine: %w", domain.ErrAuthenticationRequired)
	}
	return s.List(ctx, domain.BookingQuery{UserID: &caller.ID})
}

// GetByID returns domain.ErrNotFound if the booking does not exist.
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	result, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	return result, nil
}

// Create books a listing for caller. The guest is always the caller and the
// status is left to the store default (pending). The total price is
// computed from the listing's nightly price.
func (s *BookingService) Create(ctx context.Context, caller *domain.User, booking domain.Booking) (domain.Booking, error) {
	if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	if domain.IsAnonymous(caller) {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", domain.ErrAuthenticationRequired)
	}
	booking.User = domain.UserRef{ID: caller.ID, Username: caller.Username}
	booking.Status = ""

	priced, err := s.price(ctx, booking)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	result, err := s.bookings.Create(ctx, priced)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	s.publish(ctx, events.BookingCreated, result)
	return result, nil
}

// Update applies patch to the booking and re-prices it.
func (s *BookingService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.BookingPatch) (domain.Booking, error) {
	current, err := s.authorizedBooking(ctx, caller, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Update: %w", err)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Booking{}, domain.Invalid("status", fmt.Sprintf("%q is not a valid choice.", *patch.Status))
	}

	priced, err := s.price(ctx, patch.Apply(current))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Update: %w", err)
	}
	if patch.Status == nil {
		// current.Status may already be stale; leave the stored one alone.
		priced.Status = ""
	}
	result, err := s.bookings.Update(ctx, priced)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if _, err := s.authorizedBooking(ctx, caller, id); err != nil {
		return fmt.Errorf("service.BookingService.Delete: %w", err)
	}
	if err := s.bookings.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.BookingService.Delete: %w", err)
	}
	return nil
}

// Cancel moves the booking to cancelled from any other status.
// A booking that is already cancelled yields a *domain.StateTransitionError.
func (s *BookingService) Cancel(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error) {
	result, err := s.transition(ctx, caller, id, domain.StatusCancelled)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	s.publish(ctx, events.BookingCancelled, result)
	return result, nil
}

// Confirm moves the booking to confirmed from any other status, including
// cancelled. A booking that is already confirmed yields a
// *domain.StateTransitionError.
func (s *BookingService) Confirm(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error) {
	result, err := s.transition(ctx, caller, id, domain.StatusConfirmed)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Confirm: %w", err)
	}
	s.publish(ctx, events.BookingConfirmed, result)
	return result, nil
}

// transition authorizes the caller against the booking's guest, then hands
// the check-and-set to the store as one conditional update.
func (s *BookingService) transition(ctx context.Context, caller *domain.User, id uuid.UUID, to domain.BookingStatus) (domain.Booking, error) {
	if _, err := s.authorizedBooking(ctx, caller, id); err != nil {
		return domain.Booking{}, err
	}
	return s.bookings.TransitionStatus(ctx, id, to)
}

func (s *BookingService) authorizedBooking(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error) {
	if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
		return domain.Booking{}, err
	}
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.policy.Authorize(caller, authz.Write, current.User.ID); err != nil {
		return domain.Booking{}, err
	}
	return current, nil
}

// price validates b against its listing and sets the total price.
func (s *BookingService) price(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	listing, err := s.listings.GetByID(ctx, b.ListingID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Booking{}, domain.Invalid("listing_id", "Listing does not exist.")
	}
	if err != nil {
		return domain.Booking{}, err
	}
	if err := validateBooking(b, listing); err != nil {
		return domain.Booking{}, err
	}
	b.TotalPrice = listing.PricePerNight.Mul(b.Nights())
	return b, nil
}

// validateBooking enforces the date and capacity rules common to Create and
// Update.
func validateBooking(b domain.Booking, listing domain.Listing) error {
	switch {
	case b.CheckIn.IsZero():
		return domain.Invalid("check_in_date", "This field is required.")
	case b.CheckOut.IsZero():
		return domain.Invalid("check_out_date", "This field is required.")
	case !b.CheckOut.After(b.CheckIn):
		return domain.Invalid("check_out_date", "Check-out date must be after check-in date.")
	case b.NumberOfGuests < 1:
		return domain.Invalid("number_of_guests", "Ensure this value is greater than or equal to 1.")
	case b.NumberOfGuests > listing.MaxGuests:
		return domain.Invalid("number_of_guests", fmt.Sprintf("Number of guests cannot exceed %d", listing.MaxGuests))
	case listing.PricePerNight.Mul(b.Nights()) > domain.MaxMoney:
		return domain.Invalid("total_price", "Ensure that there are no more than 10 digits in total.")
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, typ string, b domain.Booking) {
	if err := s.publisher.Publish(ctx, events.NewBookingEvent(typ, b)); err != nil {
		s.logger.WarnContext(ctx, "publish booking event",
			slog.String("type", typ),
			slog.String("booking_id", b.ID.String()),
			slog.Any("error", err),
		)
	}
}
