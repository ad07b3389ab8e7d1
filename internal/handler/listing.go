package handler

import (
	"net/http"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/domain"
)

// ListListings handles GET /listings.
// Filters: location, is_available, bedrooms, bathrooms (exact match).
// Search: q (or search), whitespace-separated terms, all must match.
// Ordering: ordering=price_per_night|created_at|title, "-" for descending.
// Paging: optional page and limit.
func (s *Server) ListListings(w http.ResponseWriter, r *http.Request) {
	var q domain.ListingQuery
	b := newQueryBinder(r)
	b.bind("location", &q.Location)
	b.bind("is_available", &q.IsAvailable)
	b.bind("bedrooms", &q.Bedrooms)
	b.bind("bathrooms", &q.Bathrooms)
	q.Pagination = b.pagination()
	search := b.raw("q")
	if search == "" {
		search = b.raw("search")
	}
	ordering := b.raw("ordering")
	if !b.ok(w) {
		return
	}
	q.Search = domain.SearchTerms(search)
	q.Ordering = domain.ParseOrdering(ordering, domain.ListingOrderFields, domain.DefaultListingOrder)

	listings, err := s.listings.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(listings, listingToResponse))
}

// ListAvailableListings handles GET /listings/available.
// Every query parameter is ignored.
func (s *Server) ListAvailableListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.listings.Available(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(listings, listingToResponse))
}

// CreateListing handles POST /listings. The host is always the caller.
func (s *Server) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if !s.decode(w, r, &req) {
		return
	}

	listing := req.patch().Apply(domain.Listing{IsAvailable: true})
	created, err := s.listings.Create(r.Context(), auth.CallerFromContext(r.Context()), listing)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listingToResponse(created))
}

// GetListing handles GET /listings/{id}.
func (s *Server) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	listing, err := s.listings.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingToResponse(listing))
}

// ReplaceListing handles PUT /listings/{id}.
func (s *Server) ReplaceListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	s.updateListing(w, r, &req, func() domain.ListingPatch { return req.patch() })
}

// PatchListing handles PATCH /listings/{id}.
func (s *Server) PatchListing(w http.ResponseWriter, r *http.Request) {
	var req listingPatchRequest
	s.updateListing(w, r, &req, func() domain.ListingPatch { return req.patch() })
}

func (s *Server) updateListing(w http.ResponseWriter, r *http.Request, req any, patch func() domain.ListingPatch) {
	id, ok := s.pathID(w, r)
	if !ok || !s.decode(w, r, req) {
		return
	}
	updated, err := s.listings.Update(r.Context(), auth.CallerFromContext(r.Context()), id, patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingToResponse(updated))
}

// DeleteListing handles DELETE /listings/{id}.
func (s *Server) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.listings.Delete(r.Context(), auth.CallerFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListListingBookings handles GET /listings/{id}/bookings.
func (s *Server) ListListingBookings(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	bookings, err := s.listings.Bookings(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(bookings, bookingToResponse))
}

// ListListingReviews handles GET /listings/{id}/reviews.
func (s *Server) ListListingReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	reviews, err := s.listings.Reviews(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(reviews, reviewToResponse))
}
