package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/events"
	"github.com/pkordes/rental-api/internal/repo"
)

// The repo doubles below are hand-written: each method is a function field,
// set only the ones your test needs. Calling an unset method panics, which
// is how tests assert that the store was never touched.

type mockListingRepo struct {
	create  func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	list    func(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)
	update  func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockListingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	return m.create(ctx, l)
}
func (m *mockListingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	return m.getByID(ctx, id)
}
func (m *mockListingRepo) List(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	return m.list(ctx, q)
}
func (m *mockListingRepo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	return m.update(ctx, l)
}
func (m *mockListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockBookingRepo struct {
	create           func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	getByID          func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	list             func(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error)
	update           func(ctx context.Context, b domain.Booking) (domain.Booking, error)
	delete           func(ctx context.Context, id uuid.UUID) error
	transitionStatus func(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (domain.Booking, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, b)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingRepo) List(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error) {
	return m.list(ctx, q)
}
func (m *mockBookingRepo) Update(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	return m.update(ctx, b)
}
func (m *mockBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockBookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (domain.Booking, error) {
	return m.transitionStatus(ctx, id, to)
}

type mockReviewRepo struct {
	create  func(ctx context.Context, r domain.Review) (domain.Review, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Review, error)
	list    func(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error)
	update  func(ctx context.Context, r domain.Review) (domain.Review, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockReviewRepo) Create(ctx context.Context, r domain.Review) (domain.Review, error) {
	return m.create(ctx, r)
}
func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	return m.getByID(ctx, id)
}
func (m *mockReviewRepo) List(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	return m.list(ctx, q)
}
func (m *mockReviewRepo) Update(ctx context.Context, r domain.Review) (domain.Review, error) {
	return m.update(ctx, r)
}
func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time checks: the doubles must satisfy the repo interfaces.
var (
	_ repo.ListingRepo = (*mockListingRepo)(nil)
	_ repo.BookingRepo = (*mockBookingRepo)(nil)
	_ repo.ReviewRepo  = (*mockReviewRepo)(nil)
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ---- fixtures --------------------------------------------------------------

var (
	alice = &domain.User{ID: uuid.New(), Username: "alice"}
	bob   = &domain.User{ID: uuid.New(), Username: "bob"}
)

func sampleListing(host *domain.User) domain.Listing {
	return domain.Listing{
		ID:            uuid.New(),
		Host:          domain.UserRef{ID: host.ID, Username: host.Username},
		Title:         "Cozy Beachfront Villa",
		Description:   "Beautiful villa with stunning ocean views.",
		Location:      "Miami, Florida",
		PricePerNight: 25000,
		Bedrooms:      3,
		Bathrooms:     2,
		MaxGuests:     6,
		IsAvailable:   true,
	}
}

// listingStore returns a ListingRepo whose GetByID serves only l.
func listingStore(l domain.Listing) *mockListingRepo {
	return &mockListingRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Listing, error) {
			if id != l.ID {
				return domain.Listing{}, domain.ErrNotFound
			}
			return l, nil
		},
		create: func(_ context.Context, l domain.Listing) (domain.Listing, error) { return l, nil },
		update: func(_ context.Context, l domain.Listing) (domain.Listing, error) { return l, nil },
		delete: func(_ context.Context, _ uuid.UUID) error { return nil },
	}
}

// bookingStore is an in-memory BookingRepo holding a single booking whose
// TransitionStatus behaves like the conditional UPDATE in Postgres.
func bookingStore(b domain.Booking) *mockBookingRepo {
	var mu sync.Mutex
	current := b
	get := func(_ context.Context, id uuid.UUID) (domain.Booking, error) {
		mu.Lock()
		defer mu.Unlock()
		if id != current.ID {
			return domain.Booking{}, domain.ErrNotFound
		}
		return current, nil
	}
	return &mockBookingRepo{
		getByID: get,
		create: func(_ context.Context, nb domain.Booking) (domain.Booking, error) {
			nb.ID = uuid.New()
			nb.Status = domain.StatusPending
			return nb, nil
		},
		update: func(_ context.Context, nb domain.Booking) (domain.Booking, error) {
			mu.Lock()
			defer mu.Unlock()
			if nb.Status == "" {
				nb.Status = current.Status
			}
			current = nb
			return nb, nil
		},
		delete: func(_ context.Context, _ uuid.UUID) error { return nil },
		transitionStatus: func(_ context.Context, id uuid.UUID, to domain.BookingStatus) (domain.Booking, error) {
			mu.Lock()
			defer mu.Unlock()
			if id != current.ID {
				return domain.Booking{}, domain.ErrNotFound
			}
			if current.Status == to {
				return domain.Booking{}, &domain.StateTransitionError{Status: current.Status}
			}
			current.Status = to
			return current, nil
		},
	}
}

func sampleBooking(listing domain.Listing, guest *domain.User) domain.Booking {
	return domain.Booking{
		ID:             uuid.New(),
		ListingID:      listing.ID,
		User:           domain.UserRef{ID: guest.ID, Username: guest.Username},
		CheckIn:        date(2025, 7, 1),
		CheckOut:       date(2025, 7, 4),
		NumberOfGuests: 2,
		TotalPrice:     75000,
		Status:         domain.StatusPending,
	}
}
