package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/domain"
)

// ListBookings handles GET /bookings.
// Filters: listing, user, status, check_in_date, check_out_date.
// The user value is applied twice: as a user id when it parses as one, and
// always as an exact username. Both clauses must hold, so
// ?user=alice returns alice's bookings and an unknown name returns [].
func (s *Server) ListBookings(w http.ResponseWriter, r *http.Request) {
	var (
		q                 domain.BookingQuery
		user, status      *string
		checkIn, checkOut *openapi_types.Date
	)
	b := newQueryBinder(r)
	b.bind("listing", &q.ListingID)
	b.bind("user", &user)
	b.bind("status", &status)
	b.bind("check_in_date", &checkIn)
	b.bind("check_out_date", &checkOut)
	q.Pagination = b.pagination()
	ordering := b.raw("ordering")
	if !b.ok(w) {
		return
	}

	if user != nil {
		if id, err := uuid.Parse(*user); err == nil {
			q.UserID = &id
		}
		q.Username = user
	}
	if status != nil {
		st := domain.BookingStatus(*status)
		if !st.Valid() {
			writeJSON(w, http.StatusBadRequest, errorBody{
				Detail: "Invalid query parameters.",
				Errors: map[string]string{"status": "Select a valid choice."},
			})
			return
		}
		q.Status = &st
	}
	if checkIn != nil {
		q.CheckIn = &checkIn.Time
	}
	if checkOut != nil {
		q.CheckOut = &checkOut.Time
	}
	q.Ordering = domain.ParseOrdering(ordering, domain.BookingOrderFields, domain.DefaultBookingOrder)

	bookings, err := s.bookings.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(bookings, bookingToResponse))
}

// ListMyBookings handles GET /bookings/my_bookings.
func (s *Server) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.Mine(r.Context(), auth.CallerFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(bookings, bookingToResponse))
}

// CreateBooking handles POST /bookings. The guest is always the caller and
// any status in the body is ignored.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Status = nil

	booking := req.patch().Apply(domain.Booking{})
	created, err := s.bookings.Create(r.Context(), auth.CallerFromContext(r.Context()), booking)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingToResponse(created))
}

// GetBooking handles GET /bookings/{id}.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	booking, err := s.bookings.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(booking))
}

// ReplaceBooking handles PUT /bookings/{id}.
func (s *Server) ReplaceBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	s.updateBooking(w, r, &req, func() domain.BookingPatch { return req.patch() })
}

// PatchBooking handles PATCH /bookings/{id}.
func (s *Server) PatchBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingPatchRequest
	s.updateBooking(w, r, &req, func() domain.BookingPatch { return req.patch() })
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request, req any, patch func() domain.BookingPatch) {
	id, ok := s.pathID(w, r)
	if !ok || !s.decode(w, r, req) {
		return
	}
	updated, err := s.bookings.Update(r.Context(), auth.CallerFromContext(r.Context()), id, patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(updated))
}

// DeleteBooking handles DELETE /bookings/{id}.
func (s *Server) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.bookings.Delete(r.Context(), auth.CallerFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelBooking handles POST /bookings/{id}/cancel.
// 400 with "Booking is already cancelled." when there is nothing to do.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	s.transitionBooking(w, r, s.bookings.Cancel)
}

// ConfirmBooking handles POST /bookings/{id}/confirm.
// 400 with "Booking is already confirmed." when there is nothing to do.
func (s *Server) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	s.transitionBooking(w, r, s.bookings.Confirm)
}

type transitionFunc func(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Booking, error)

func (s *Server) transitionBooking(w http.ResponseWriter, r *http.Request, transition transitionFunc) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	booking, err := transition(r.Context(), auth.CallerFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingToResponse(booking))
}
