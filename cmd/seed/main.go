// Command seed fills the database with sample users, listings, bookings, and
// reviews, and prints a bearer token for every sample user so the API can be
// exercised by hand.
//
// Usage:
//
//	go run ./cmd/seed --listings 10 --bookings 20 --reviews 15
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/config"
	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/logging"
	"github.com/pkordes/rental-api/internal/repo"
	"github.com/pkordes/rental-api/migrations"
)

var sampleUsernames = []string{"john_host", "jane_traveler", "mike_guest", "sarah_host", "david_explorer"}

var sampleListings = []domain.Listing{
	{
		Title:         "Cozy Beachfront Villa",
		Description:   "Beautiful villa with stunning ocean views and private beach access.",
		Location:      "Miami, Florida",
		PricePerNight: 25000,
		Bedrooms:      3,
		Bathrooms:     2,
		MaxGuests:     6,
	},
	{
		Title:         "Mountain Cabin Retreat",
		Description:   "Peaceful cabin nestled in the mountains with hiking trails nearby.",
		Location:      "Aspen, Colorado",
		PricePerNight: 18000,
		Bedrooms:      2,
		Bathrooms:     1,
		MaxGuests:     4,
	},
	{
		Title:         "Urban Loft Downtown",
		Description:   "Modern loft in the heart of the city with easy access to attractions.",
		Location:      "New York, NY",
		PricePerNight: 30000,
		Bedrooms:      1,
		Bathrooms:     1,
		MaxGuests:     2,
	},
	{
		Title:         "Countryside Farmhouse",
		Description:   "Charming farmhouse surrounded by rolling hills and farmland.",
		Location:      "Tuscany, Italy",
		PricePerNight: 20000,
		Bedrooms:      4,
		Bathrooms:     3,
		MaxGuests:     8,
	},
	{
		Title:         "Desert Oasis Resort",
		Description:   "Luxurious resort with pool and spa amenities in the desert.",
		Location:      "Scottsdale, Arizona",
		PricePerNight: 40000,
		Bedrooms:      2,
		Bathrooms:     2,
		MaxGuests:     4,
	},
}

var sampleComments = []string{
	"Amazing place! Clean, comfortable, and great location.",
	"Perfect for a family vacation. Host was very responsive.",
	"Beautiful property with stunning views. Highly recommended!",
	"Good value for money. Would definitely stay again.",
	"Excellent amenities and very peaceful surroundings.",
	"Great experience overall. The photos don't do it justice!",
	"Convenient location with easy access to local attractions.",
	"Host went above and beyond to make our stay comfortable.",
}

type seeder struct {
	users    repo.UserRepo
	listings repo.ListingRepo
	bookings repo.BookingRepo
	reviews  repo.ReviewRepo
	log      *slog.Logger
}

func main() {
	nListings := flag.Int("listings", 10, "number of listings to create")
	nBookings := flag.Int("bookings", 20, "number of bookings to create")
	nReviews := flag.Int("reviews", 15, "number of reviews to attempt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	_, err = migrations.Up(ctx, db)
	_ = db.Close()
	if err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	s := &seeder{
		users:    repo.NewUserRepo(pool),
		listings: repo.NewListingRepo(pool),
		bookings: repo.NewBookingRepo(pool),
		reviews:  repo.NewReviewRepo(pool),
		log:      logger,
	}
	if err := s.run(ctx, *nListings, *nBookings, *nReviews, auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func (s *seeder) run(ctx context.Context, nListings, nBookings, nReviews int, issuer *auth.Issuer) error {
	s.log.Info("starting database seeding")

	users, err := s.createUsers(ctx)
	if err != nil {
		return err
	}
	s.log.Info("users ready", "count", len(users))

	listings, err := s.createListings(ctx, users, nListings)
	if err != nil {
		return err
	}
	s.log.Info("listings created", "count", len(listings))

	bookings, err := s.createBookings(ctx, users, listings, nBookings)
	if err != nil {
		return err
	}
	s.log.Info("bookings created", "count", bookings)

	reviews, err := s.createReviews(ctx, users, listings, nReviews)
	if err != nil {
		return err
	}
	s.log.Info("reviews created", "count", reviews)

	for _, u := range users {
		token, err := issuer.Issue(u)
		if err != nil {
			return err
		}
		fmt.Printf("%-16s %s\n", u.Username, token)
	}
	return nil
}

// createUsers upserts the sample users. Ids are derived from the username so
// that repeated runs refer to the same users. A username already claimed by a
// token holder is reused as is, since upserting it under the derived id
// would conflict.
func (s *seeder) createUsers(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(sampleUsernames))
	for _, name := range sampleUsernames {
		existing, err := s.users.GetByUsername(ctx, name)
		switch {
		case err == nil:
			users = append(users, existing)
			continue
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("seed users: %w", err)
		}

		u, err := s.users.Upsert(ctx, domain.User{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte("rental-api/"+name)),
			Username: name,
		})
		if err != nil {
			return nil, fmt.Errorf("seed users: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// createListings uses each sample once, then adds priced variants of them
// until count is reached.
func (s *seeder) createListings(ctx context.Context, users []domain.User, count int) ([]domain.Listing, error) {
	listings := make([]domain.Listing, 0, count)
	for i := range count {
		l := sampleListings[i%len(sampleListings)]
		if i >= len(sampleListings) {
			l.Title = fmt.Sprintf("%s - Variant %d", l.Title, i+1)
			l.PricePerNight += domain.Money(rand.IntN(151)-50) * 100
		}
		host := pick(users)
		l.Host = domain.UserRef{ID: host.ID}
		l.IsAvailable = true

		created, err := s.listings.Create(ctx, l)
		if err != nil {
			return nil, fmt.Errorf("seed listings: %w", err)
		}
		listings = append(listings, created)
	}
	return listings, nil
}

func (s *seeder) createBookings(ctx context.Context, users []domain.User, listings []domain.Listing, count int) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}
	statuses := []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed, domain.StatusCompleted}
	today := time.Now().UTC().Truncate(24 * time.Hour)

	created := 0
	for range count {
		listing := pick(listings)
		guest := pick(guestsOf(users, listing))
		checkIn := today.AddDate(0, 0, 1+rand.IntN(90))
		checkOut := checkIn.AddDate(0, 0, 1+rand.IntN(14))

		b, err := s.bookings.Create(ctx, domain.Booking{
			ListingID:      listing.ID,
			User:           domain.UserRef{ID: guest.ID},
			CheckIn:        checkIn,
			CheckOut:       checkOut,
			NumberOfGuests: 1 + rand.IntN(listing.MaxGuests),
			TotalPrice:     listing.PricePerNight.Mul(domain.NightsBetween(checkIn, checkOut)),
		})
		if err != nil {
			return created, fmt.Errorf("seed bookings: %w", err)
		}
		if status := pick(statuses); status != domain.StatusPending {
			b.Status = status
			if _, err := s.bookings.Update(ctx, b); err != nil {
				return created, fmt.Errorf("seed bookings: %w", err)
			}
		}
		created++
	}
	return created, nil
}

// createReviews skips attempts where the chosen guest already reviewed the
// listing, so fewer than count reviews may be created.
func (s *seeder) createReviews(ctx context.Context, users []domain.User, listings []domain.Listing, count int) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}
	created := 0
	for range count {
		listing := pick(listings)
		guest := pick(guestsOf(users, listing))

		_, err := s.reviews.Create(ctx, domain.Review{
			ListingID: listing.ID,
			User:      domain.UserRef{ID: guest.ID},
			Rating:    3 + rand.IntN(3),
			Comment:   pick(sampleComments),
		})
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed reviews: %w", err)
		}
		created++
	}
	return created, nil
}

// guestsOf returns every user except the listing's host.
func guestsOf(users []domain.User, listing domain.Listing) []domain.User {
	guests := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.ID != listing.Host.ID {
			guests = append(guests, u)
		}
	}
	return guests
}

func pick[T any](items []T) T {
	return items[rand.IntN(len(items))]
}
