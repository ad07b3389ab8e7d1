package handler

import (
	"net/http"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/domain"
)

// ListReviews handles GET /reviews.
// Filters: listing, user, rating. Ordering: rating|created_at.
func (s *Server) ListReviews(w http.ResponseWriter, r *http.Request) {
	var q domain.ReviewQuery
	b := newQueryBinder(r)
	b.bind("listing", &q.ListingID)
	b.bind("user", &q.UserID)
	b.bind("rating", &q.Rating)
	q.Pagination = b.pagination()
	ordering := b.raw("ordering")
	if !b.ok(w) {
		return
	}
	q.Ordering = domain.ParseOrdering(ordering, domain.ReviewOrderFields, domain.DefaultReviewOrder)

	reviews, err := s.reviews.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAll(reviews, reviewToResponse))
}

// CreateReview handles POST /reviews. The author is always the caller.
func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !s.decode(w, r, &req) {
		return
	}

	review := domain.Review{ListingID: *req.ListingID, Rating: *req.Rating, Comment: *req.Comment}
	created, err := s.reviews.Create(r.Context(), auth.CallerFromContext(r.Context()), review)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reviewToResponse(created))
}

// GetReview handles GET /reviews/{id}.
func (s *Server) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	review, err := s.reviews.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewToResponse(review))
}

// ReplaceReview handles PUT /reviews/{id}. The listing of a review is fixed
// at creation; a listing_id in the body is ignored.
func (s *Server) ReplaceReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	s.updateReview(w, r, &req, func() domain.ReviewPatch {
		return domain.ReviewPatch{Rating: req.Rating, Comment: req.Comment}
	})
}

// PatchReview handles PATCH /reviews/{id}.
func (s *Server) PatchReview(w http.ResponseWriter, r *http.Request) {
	var req reviewPatchRequest
	s.updateReview(w, r, &req, func() domain.ReviewPatch { return req.patch() })
}

func (s *Server) updateReview(w http.ResponseWriter, r *http.Request, req any, patch func() domain.ReviewPatch) {
	id, ok := s.pathID(w, r)
	if !ok || !s.decode(w, r, req) {
		return
	}
	updated, err := s.reviews.Update(r.Context(), auth.CallerFromContext(r.Context()), id, patch())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewToResponse(updated))
}

// DeleteReview handles DELETE /reviews/{id}.
func (s *Server) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.reviews.Delete(r.Context(), auth.CallerFromContext(r.Context()), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
