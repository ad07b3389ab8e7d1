package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/authz"
	"github.com/pkordes/rental-api/internal/domain"
	"github.com/pkordes/rental-api/internal/repo"
)

// ReviewService implements business logic for Review operations.
type ReviewService struct {
	reviews  repo.ReviewRepo
	listings repo.ListingRepo
	policy   authz.Policy
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews repo.ReviewRepo, listings repo.ListingRepo, policy authz.Policy) *ReviewService {
	return &ReviewService{reviews: reviews, listings: listings, policy: policy}
}

// List returns the reviews matching q. Always returns a non-nil slice.
func (s *ReviewService) List(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	if len(q.Ordering) == 0 {
		q.Ordering = domain.DefaultReviewOrder
	}
	reviews, err := s.reviews.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.ReviewService.List: %w", err)
	}
	if reviews == nil {
		return []domain.Review{}, nil
	}
	return reviews, nil
}

func (s *ReviewService) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	result, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.GetByID: %w", err)
	}
	return result, nil
}

// Create stores caller's review of a listing. A second review of the same
// listing by the same user is a *domain.ConflictError.
func (s *ReviewService) Create(ctx context.Context, caller *domain.User, review domain.Review) (domain.Review, error) {
	if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", err)
	}
	if domain.IsAnonymous(caller) {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", domain.ErrAuthenticationRequired)
	}
	review.User = domain.UserRef{ID: caller.ID, Username: caller.Username}

	if err := validateReview(review); err != nil {
		return domain.Review{}, err
	}
	if _, err := s.listings.GetByID(ctx, review.ListingID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Review{}, domain.Invalid("listing_id", "Listing does not exist.")
		}
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", err)
	}

	result, err := s.reviews.Create(ctx, review)
	if errors.Is(err, domain.ErrConflict) {
		return domain.Review{}, &domain.ConflictError{Detail: "You have already reviewed this listing."}
	}
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w", err)
	}
	return result, nil
}

// Update applies patch to the review.
func (s *ReviewService) Update(ctx context.Context, caller *domain.User, id uuid.UUID, patch domain.ReviewPatch) (domain.Review, error) {
	current, err := s.authorizedReview(ctx, caller, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Update: %w", err)
	}

	updated := patch.Apply(current)
	if err := validateReview(updated); err != nil {
		return domain.Review{}, err
	}
	result, err := s.reviews.Update(ctx, updated)
	if err != nil {
		return domain.Review{}, fmt.Errorf("service.ReviewService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, caller *domain.User, id uuid.UUID) error {
	if _, err := s.authorizedReview(ctx, caller, id); err != nil {
		return fmt.Errorf("service.ReviewService.Delete: %w", err)
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ReviewService.Delete: %w", err)
	}
	return nil
}

func (s *ReviewService) authorizedReview(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Review, error) {
	if err := s.policy.Authorize(caller, authz.Write, uuid.Nil); err != nil {
		return domain.Review{}, err
	}
	current, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if err := s.policy.Authorize(caller, authz.Write, current.User.ID); err != nil {
		return domain.Review{}, err
	}
	return current, nil
}

func validateReview(r domain.Review) error {
	if r.Rating < 1 || r.Rating > 5 {
		return domain.Invalid("rating", "Ensure this value is between 1 and 5.")
	}
	if strings.TrimSpace(r.Comment) == "" {
		return domain.Invalid("comment", "This field may not be blank.")
	}
	return nil
}
