package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/repo"
)

// repos bundles every repo over the same rolled-back transaction.
type repos struct {
	users    repo.UserRepo
	listings repo.ListingRepo
	bookings repo.BookingRepo
	reviews  repo.ReviewRepo
}

func newRepos(tx pgx.Tx) repos {
	return repos{
		users:    repo.NewUserRepo(tx),
		listings: repo.NewListingRepo(tx),
		bookings: repo.NewBookingRepo(tx),
		reviews:  repo.NewReviewRepo(tx),
	}
}

// mustUser inserts a user with a unique username derived from name.
func mustUser(t *testing.T, r repos, name string) domain.User {
	t.Helper()
	u, err := r.users.Upsert(context.Background(), domain.User{
		ID:       uuid.New(),
		Username: name + "-" + uuid.NewString()[:8],
	})
	require.NoError(t, err)
	return u
}

func listingFixture(host domain.User) domain.Listing {
	return domain.Listing{
		Host:          domain.UserRef{ID: host.ID},
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

func mustListing(t *testing.T, r repos, l domain.Listing) domain.Listing {
	t.Helper()
	got, err := r.listings.Create(context.Background(), l)
	require.NoError(t, err)
	return got
}

func bookingFixture(listing domain.Listing, guest domain.User) domain.Booking {
	return domain.Booking{
		ListingID:      listing.ID,
		User:           domain.UserRef{ID: guest.ID},
		CheckIn:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:       time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		TotalPrice:     75000,
	}
}

func mustBooking(t *testing.T, r repos, b domain.Booking) domain.Booking {
	t.Helper()
	got, err := r.bookings.Create(context.Background(), b)
	require.NoError(t, err)
	return got
}

// missingID is a UUID that is never inserted.
var missingID = uuid.UUID{0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef,
	0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef}
