package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/handler"
)

// mockListingServicer is a test double for handler.ListingServicer.
// Set only the method fields your test needs.
type mockListingServicer struct {
	list      func(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)
	available func(ctx context.Context) ([]domain.Listing, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	create    func(ctx context.Context, caller *domain.User, l domain.Listing) (domain.Listing, error)
	update    func(ctx context.Context, caller *domain.User, id uuid.UUID, p domain.ListingPatch) (domain.Listing, error)
	delete    func(ctx context.Context, caller *domain.User, id uuid.UUID) error
	bookings  func(ctx context.Context, id uuid.UUID) ([]domain.Booking, error)
	reviews   func(ctx context.Context, id uuid.UUID) ([]domain.Review, error)
}

func (m *mockListingServicer) List(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	return m.list(ctx, q)
}
func (m *mockListingServicer) Available(ctx context.Context) ([]domain.Listing, error) {
	return m.available(ctx)
}
func (m *mockListingServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	return m.getByID(ctx, id)
}
func (m *mockListingServicer) Create(ctx context.Context, caller *domain.User, l domain.Listing) (domain.Listing, error) {
	return m.create(ctx, caller, l)
}
func (m *mockListingServicer) Update(ctx context.Context, caller *domain.User, id uuid.UUID, p domain.ListingPatch) (domain.Listing, error) {
	return m.update(ctx, caller, id, p)
}
func (m *mockListingServicer) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	return m.delete(ctx, caller, id)
}
func (m *mockListingServicer) Bookings(ctx context.Context, id uuid.UUID) ([]domain.Booking, error) {
	return m.bookings(ctx, id)
}
func (m *mockListingServicer) Reviews(ctx context.Context, id uuid.UUID) ([]domain.Review, error) {
	return m.reviews(ctx, id)
}

// mockBookingServicer is a test double for handler.BookingServicer.
type mockBookingServicer struct {
	list    func(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error)
	mine    func(ctx context.Context, caller *domain.User) ([]domain.Booking, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	create  func(ctx context.Context, caller *domain.User, b domain.Booking) (domain.Booking, error)
	update  func(ctx context.Context, caller *domain.User, id uuid.UUID, p domain.BookingPatch) (domain.Booking, error)
	delete  func(ctx context.Context, caller *domain.User, id uuid.UUID) error
	cancel  func(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error)
	confirm func(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error)
}

func (m *mockBookingServicer) List(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error) {
	return m.list(ctx, q)
}
func (m *mockBookingServicer) Mine(ctx context.Context, caller *domain.User) ([]domain.Booking, error) {
	return m.mine(ctx, caller)
}
func (m *mockBookingServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return m.getByID(ctx, id)
}
func (m *mockBookingServicer) Create(ctx context.Context, caller *domain.User, b domain.Booking) (domain.Booking, error) {
	return m.create(ctx, caller, b)
}
func (m *mockBookingServicer) Update(ctx context.Context, caller *domain.User, id uuid.UUID, p domain.BookingPatch) (domain.Booking, error) {
	return m.update(ctx, caller, id, p)
}
func (m *mockBookingServicer) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	return m.delete(ctx, caller, id)
}
func (m *mockBookingServicer) Cancel(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error) {
	return m.cancel(ctx, caller, id)
}
func (m *mockBookingServicer) Confirm(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error) {
	return m.confirm(ctx, caller, id)
}

// mockReviewServicer is a test double for handler.ReviewServicer.
type mockReviewServicer struct {
	list    func(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Review, error)
	create  func(ctx context.Context, caller *domain.User, r domain.Review) (domain.Review, error)
	update  func(ctx context.Context, caller *domain.User, id uuid.UUID, p domain.ReviewPatch) (domain.Review, error)
	delete  func(ctx context.Context, caller *domain.User, id uuid.UUID) error
}

func (m *mockReviewServicer) List(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	return m.list(ctx, q)
}
func (m *mockReviewServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	return m.getByID(ctx, id)
}
func (m *mockReviewServicer) Create(ctx context.Context, caller *domain.User, r domain.Review) (domain.Review, error) {
	return m.create(ctx, caller, r)
}
func (m *mockReviewServicer) Update(ctx context.Context, caller *domain.User, id uuid.UUID, p domain.ReviewPatch) (domain.Review, error) {
	return m.update(ctx, caller, id, p)
}
func (m *mockReviewServicer) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	return m.delete(ctx, caller, id)
}

// stubPinger answers every ping with err.
type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.ListingServicer = (*mockListingServicer)(nil)
	_ handler.BookingServicer = (*mockBookingServicer)(nil)
	_ handler.ReviewServicer  = (*mockReviewServicer)(nil)
	_ handler.Pinger          = stubPinger{}
)

// ---- helpers ---------------------------------------------------------------

// deps collects the doubles for one test. Nil fields are replaced with
// empty mocks, which panic if a handler unexpectedly calls them.
type deps struct {
	listings *mockListingServicer
	bookings *mockBookingServicer
	reviews  *mockReviewServicer
	db       handler.Pinger
	policy   authz.Policy
	caller   *domain.User
}

// newHTTPHandler wires a Server with the given doubles the same way main.go
// mounts it. When d.caller is set every request carries that caller, as if
// the authentication middleware had verified a token for it.
func newHTTPHandler(d deps) http.Handler {
	if d.listings == nil {
		d.listings = &mockListingServicer{}
	}
	if d.bookings == nil {
		d.bookings = &mockBookingServicer{}
	}
	if d.reviews == nil {
		d.reviews = &mockReviewServicer{}
	}
	if d.db == nil {
		d.db = stubPinger{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewServer(d.listings, d.bookings, d.reviews, d.db, d.policy, log).Handler()

	if d.caller == nil {
		return h
	}
	caller := *d.caller
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), caller)))
	})
}

// do sends a request through h and returns the recorded response.
func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewBuffer(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody decodes the recorded JSON response into a generic value.
func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

type errorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

var (
	alice = domain.User{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Username: "alice"}
	bob   = domain.User{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Username: "bob"}
)

func ref(u domain.User) domain.UserRef {
	return domain.UserRef{ID: u.ID, Username: u.Username}
}

func listingFixture() domain.Listing {
	now := time.Now().UTC()
	return domain.Listing{
		ID:            uuid.New(),
		Title:         "Mountain Cabin",
		Description:   "Cozy cabin with a view",
		Location:      "Aspen, Colorado",
		PricePerNight: 25000,
		Bedrooms:      3,
		Bathrooms:     2,
		MaxGuests:     6,
		Host:          ref(alice),
		IsAvailable:   true,
		AverageRating: 4.5,
		TotalReviews:  2,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func bookingFixture(listingID uuid.UUID) domain.Booking {
	now := time.Now().UTC()
	return domain.Booking{
		ID:             uuid.New(),
		ListingID:      listingID,
		User:           ref(bob),
		CheckIn:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:       time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		TotalPrice:     100000,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func reviewFixture(listingID uuid.UUID) domain.Review {
	now := time.Now().UTC()
	return domain.Review{
		ID:        uuid.New(),
		ListingID: listingID,
		User:      ref(bob),
		Rating:    5,
		Comment:   "Amazing stay",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
