package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/service"
)

func newListingService(listings *mockListingRepo, policy authz.Policy) *service.ListingService {
	return service.NewListingService(listings, &mockBookingRepo{}, &mockReviewRepo{}, policy)
}

// ---- Create tests ----------------------------------------------------------

func TestListingService_Create_StampsHostFromCaller(t *testing.T) {
	svc := newListingService(listingStore(domain.Listing{}), authz.RequireAuthForWrite)

	input := sampleListing(bob) // payload claims bob as host
	got, err := svc.Create(context.Background(), alice, input)

	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.Host.ID)
	assert.Equal(t, "alice", got.Host.Username)
}

func TestListingService_Create_AnonymousDenied(t *testing.T) {
	// No repo methods are set: any store access would panic.
	svc := newListingService(&mockListingRepo{}, authz.RequireAuthForWrite)

	_, err := svc.Create(context.Background(), nil, sampleListing(alice))

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestListingService_Create_Validation(t *testing.T) {
	svc := newListingService(listingStore(domain.Listing{}), authz.RequireAuthForWrite)

	tests := []struct {
		name  string
		field string
		edit  func(l *domain.Listing)
	}{
		{"blank title", "title", func(l *domain.Listing) { l.Title = "   " }},
		{"blank location", "location", func(l *domain.Listing) { l.Location = "" }},
		{"negative price", "price_per_night", func(l *domain.Listing) { l.PricePerNight = -1 }},
		{"negative bedrooms", "bedrooms", func(l *domain.Listing) { l.Bedrooms = -1 }},
		{"zero guests", "max_guests", func(l *domain.Listing) { l.MaxGuests = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := sampleListing(alice)
			tc.edit(&l)

			_, err := svc.Create(context.Background(), alice, l)

			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestListingService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &mockListingRepo{
		create: func(_ context.Context, _ domain.Listing) (domain.Listing, error) {
			return domain.Listing{}, repoErr
		},
	}
	svc := newListingService(r, authz.RequireAuthForWrite)

	_, err := svc.Create(context.Background(), alice, sampleListing(alice))

	assert.ErrorIs(t, err, repoErr)
}

// ---- List tests ------------------------------------------------------------

func TestListingService_List_DefaultsOrdering(t *testing.T) {
	var seen domain.ListingQuery
	r := &mockListingRepo{
		list: func(_ context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
			seen = q
			return nil, nil
		},
	}
	svc := newListingService(r, authz.RequireAuthForWrite)

	got, err := svc.List(context.Background(), domain.ListingQuery{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, domain.DefaultListingOrder, seen.Ordering)
}

func TestListingService_Available_EqualsListWithAvailabilityOnly(t *testing.T) {
	var queries []domain.ListingQuery
	r := &mockListingRepo{
		list: func(_ context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
			queries = append(queries, q)
			return []domain.Listing{sampleListing(alice)}, nil
		},
	}
	svc := newListingService(r, authz.RequireAuthForWrite)
	available := true

	fromAvailable, err := svc.Available(context.Background())
	require.NoError(t, err)
	fromList, err := svc.List(context.Background(), domain.ListingQuery{IsAvailable: &available})
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Equal(t, queries[1], queries[0])
	assert.Equal(t, fromList, fromAvailable)
}

// ---- Update / Delete tests -------------------------------------------------

func TestListingService_Update_KeepsHost(t *testing.T) {
	existing := sampleListing(alice)
	svc := newListingService(listingStore(existing), authz.RequireAuthForWrite)

	got, err := svc.Update(context.Background(), bob, existing.ID, domain.ListingPatch{
		Title: ptr("Renamed"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, alice.ID, got.Host.ID, "any authenticated caller may edit, host never changes")
}

func TestListingService_Update_AnonymousDeniedBeforeLookup(t *testing.T) {
	svc := newListingService(&mockListingRepo{}, authz.RequireAuthForWrite)

	_, err := svc.Update(context.Background(), nil, uuid.New(), domain.ListingPatch{Title: ptr("x")})

	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestListingService_Update_NotFound(t *testing.T) {
	svc := newListingService(listingStore(sampleListing(alice)), authz.RequireAuthForWrite)

	_, err := svc.Update(context.Background(), alice, uuid.New(), domain.ListingPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingService_Update_RequireOwner(t *testing.T) {
	existing := sampleListing(alice)
	svc := newListingService(listingStore(existing), authz.RequireOwner)

	_, err := svc.Update(context.Background(), bob, existing.ID, domain.ListingPatch{Title: ptr("Mine now")})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	_, err = svc.Update(context.Background(), alice, existing.ID, domain.ListingPatch{Title: ptr("Still mine")})
	assert.NoError(t, err)
}

func TestListingService_Update_Validation(t *testing.T) {
	existing := sampleListing(alice)
	svc := newListingService(listingStore(existing), authz.RequireAuthForWrite)

	_, err := svc.Update(context.Background(), alice, existing.ID, domain.ListingPatch{MaxGuests: ptr(0)})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListingService_Delete(t *testing.T) {
	existing := sampleListing(alice)
	var deleted uuid.UUID
	r := listingStore(existing)
	r.delete = func(_ context.Context, id uuid.UUID) error {
		deleted = id
		return nil
	}
	svc := newListingService(r, authz.RequireAuthForWrite)

	require.NoError(t, svc.Delete(context.Background(), bob, existing.ID))
	assert.Equal(t, existing.ID, deleted)

	assert.ErrorIs(t, svc.Delete(context.Background(), nil, existing.ID), domain.ErrPermissionDenied)
}

// ---- Sub-resource tests ----------------------------------------------------

func TestListingService_Bookings(t *testing.T) {
	listing := sampleListing(alice)
	var seen domain.BookingQuery
	bookings := &mockBookingRepo{
		list: func(_ context.Context, q domain.BookingQuery) ([]domain.Booking, error) {
			seen = q
			return []domain.Booking{sampleBooking(listing, bob)}, nil
		},
	}
	svc := service.NewListingService(listingStore(listing), bookings, &mockReviewRepo{}, authz.RequireAuthForWrite)

	got, err := svc.Bookings(context.Background(), listing.ID)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	require.NotNil(t, seen.ListingID)
	assert.Equal(t, listing.ID, *seen.ListingID)
	assert.Equal(t, domain.DefaultBookingOrder, seen.Ordering)
}

func TestListingService_Bookings_ListingNotFound(t *testing.T) {
	svc := newListingService(listingStore(sampleListing(alice)), authz.RequireAuthForWrite)

	_, err := svc.Bookings(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingService_Reviews_EmptyIsNotNil(t *testing.T) {
	listing := sampleListing(alice)
	reviews := &mockReviewRepo{
		list: func(_ context.Context, _ domain.ReviewQuery) ([]domain.Review, error) { return nil, nil },
	}
	svc := service.NewListingService(listingStore(listing), &mockBookingRepo{}, reviews, authz.RequireAuthForWrite)

	got, err := svc.Reviews(context.Background(), listing.ID)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
