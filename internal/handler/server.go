// Package handler implements the HTTP handlers for the rental API.
// All handlers are methods on Server. Methods are split into
// resource-specific files (listing.go, booking.go, etc.) but all share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/domain"
)

// ListingServicer defines the business operations the listing handlers
// depend on. Defining the interface here (in the consumer package) lets
// handler tests inject a mock without touching the database or service layer.
type ListingServicer interface {
	List(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)
	Available(ctx context.Context) ([]domain.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	Create(ctx context.Context, caller *domain.User, listing domain.Listing) (domain.Listing, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ListingPatch) (domain.Listing, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
	Bookings(ctx context.Context, id uuid.UUID) ([]domain.Booking, error)
	Reviews(ctx context.Context, id uuid.UUID) ([]domain.Review, error)
}

// BookingServicer defines the business operations the booking handlers depend on.
type BookingServicer interface {
	List(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error)
	Mine(ctx context.Context, caller *domain.User) ([]domain.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	Create(ctx context.Context, caller *domain.User, booking domain.Booking) (domain.Booking, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.BookingPatch) (domain.Booking, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
	Cancel(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error)
	Confirm(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error)
}

// ReviewServicer defines the business operations the review handlers depend on.
type ReviewServicer interface {
	List(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error)
	Create(ctx context.Context, caller *domain.User, review domain.Review) (domain.Review, error)
	Update(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ReviewPatch) (domain.Review, error)
	Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error
}

// Pinger reports whether the database is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves every API endpoint.
type Server struct {
	listings ListingServicer
	bookings BookingServicer
	reviews  ReviewServicer
	db       Pinger
	policy   authz.Policy
	log      *slog.Logger
	validate *validator.Validate
}

// NewServer constructs the Server with all its dependencies. policy must be
// the one the services enforce; the router applies its write gate before any
// request body is read.
func NewServer(listings ListingServicer, bookings BookingServicer, reviews ReviewServicer, db Pinger, policy authz.Policy, log *slog.Logger) *Server {
	return &Server{
		listings: listings,
		bookings: bookings,
		reviews:  reviews,
		db:       db,
		policy:   policy,
		log:      log,
		validate: newValidator(),
	}
}

// Handler returns the API router. Every path is served with or without a
// trailing slash.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, `Method "`+r.Method+`" not allowed.`)
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", s.ListListings)
		r.With(s.requireWriter).Post("/", s.CreateListing)
		r.Get("/available", s.ListAvailableListings)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetListing)
			r.With(s.requireWriter).Put("/", s.ReplaceListing)
			r.With(s.requireWriter).Patch("/", s.PatchListing)
			r.With(s.requireWriter).Delete("/", s.DeleteListing)
			r.Get("/bookings", s.ListListingBookings)
			r.Get("/reviews", s.ListListingReviews)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", s.ListBookings)
		r.With(s.requireWriter).Post("/", s.CreateBooking)
		r.Get("/my_bookings", s.ListMyBookings)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetBooking)
			r.With(s.requireWriter).Put("/", s.ReplaceBooking)
			r.With(s.requireWriter).Patch("/", s.PatchBooking)
			r.With(s.requireWriter).Delete("/", s.DeleteBooking)
			r.With(s.requireWriter).Post("/cancel", s.CancelBooking)
			r.With(s.requireWriter).Post("/confirm", s.ConfirmBooking)
		})
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", s.ListReviews)
		r.With(s.requireWriter).Post("/", s.CreateReview)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetReview)
			r.With(s.requireWriter).Put("/", s.ReplaceReview)
			r.With(s.requireWriter).Patch("/", s.PatchReview)
			r.With(s.requireWriter).Delete("/", s.DeleteReview)
		})
	})

	return r
}

// requireWriter rejects callers the policy would never let write, before the
// handler decodes or validates anything. Ownership is still checked by the
// services once the target resource is loaded.
func (s *Server) requireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := auth.CallerFromContext(r.Context())
		if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
