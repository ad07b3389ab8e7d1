package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/rental-api/internal/domain"
)

func TestListReviews_BindsFilters(t *testing.T) {
	listingID := uuid.New()
	var got domain.ReviewQuery
	svc := &mockReviewServicer{
		list: func(_ context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
			got = q
			return []domain.Review{reviewFixture(listingID)}, nil
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc}), http.MethodGet,
		fmt.Sprintf("/reviews?listing=%s&user=%s&rating=5&ordering=-rating", listingID, bob.ID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.ListingID)
	assert.Equal(t, listingID, *got.ListingID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, bob.ID, *got.UserID)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating)
	assert.Equal(t, []domain.OrderField{{Field: "rating", Desc: true}}, got.Ordering)

	body := decodeBody[[]map[string]any](t, rec)
	require.Len(t, body, 1)
	assert.Contains(t, body[0], "review_id")
	assert.EqualValues(t, 5, body[0]["rating"])
}

func TestListReviews_400_NonNumericRating(t *testing.T) {
	rec := do(t, newHTTPHandler(deps{}), http.MethodGet, "/reviews?rating=five", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Errors, "rating")
}

func TestCreateReview_201_AuthorIsCaller(t *testing.T) {
	listingID := uuid.New()
	var got domain.Review
	svc := &mockReviewServicer{
		create: func(_ context.Context, caller *domain.User, r domain.Review) (domain.Review, error) {
			assert.Equal(t, bob.ID, caller.ID)
			got = r
			return reviewFixture(r.ListingID), nil
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc, caller: &bob}), http.MethodPost, "/reviews/",
		map[string]any{"listing_id": listingID, "rating": 5, "comment": "Amazing stay", "user": alice.ID})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, listingID, got.ListingID)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, uuid.Nil, got.User.ID)
	assert.Equal(t, "bob", decodeBody[map[string]any](t, rec)["user"].(map[string]any)["username"])
}

func TestCreateReview_400_RatingOutOfRange(t *testing.T) {
	rec := do(t, newHTTPHandler(deps{caller: &bob}), http.MethodPost, "/reviews",
		map[string]any{"listing_id": uuid.New(), "rating": 6, "comment": "Too good"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Ensure this value is less than or equal to 5.", decodeBody[errorResponse](t, rec).Errors["rating"])
}

func TestCreateReview_400_Duplicate(t *testing.T) {
	svc := &mockReviewServicer{
		create: func(context.Context, *domain.User, domain.Review) (domain.Review, error) {
			return domain.Review{}, fmt.Errorf("service.ReviewService.Create: %w",
				&domain.ConflictError{Detail: "You have already reviewed this listing."})
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc, caller: &bob}), http.MethodPost, "/reviews",
		map[string]any{"listing_id": uuid.New(), "rating": 4, "comment": "Again"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You have already reviewed this listing.", decodeBody[errorResponse](t, rec).Detail)
}

func TestGetReview_200(t *testing.T) {
	fixture := reviewFixture(uuid.New())
	svc := &mockReviewServicer{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Review, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc}), http.MethodGet, "/reviews/"+fixture.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixture.ID.String(), decodeBody[map[string]any](t, rec)["review_id"])
}

func TestReplaceReview_IgnoresListingID(t *testing.T) {
	fixture := reviewFixture(uuid.New())
	var got domain.ReviewPatch
	svc := &mockReviewServicer{
		update: func(_ context.Context, _ *domain.User, _ uuid.UUID, p domain.ReviewPatch) (domain.Review, error) {
			got = p
			return p.Apply(fixture), nil
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc, caller: &bob}), http.MethodPut, "/reviews/"+fixture.ID.String(),
		map[string]any{"listing_id": uuid.New(), "rating": 3, "comment": "Fine"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 3, *got.Rating)
	assert.Equal(t, fixture.ListingID.String(), decodeBody[map[string]any](t, rec)["listing_id"])
}

func TestPatchReview_200_CommentOnly(t *testing.T) {
	fixture := reviewFixture(uuid.New())
	var got domain.ReviewPatch
	svc := &mockReviewServicer{
		update: func(_ context.Context, _ *domain.User, _ uuid.UUID, p domain.ReviewPatch) (domain.Review, error) {
			got = p
			return p.Apply(fixture), nil
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc, caller: &bob}), http.MethodPatch, "/reviews/"+fixture.ID.String(),
		map[string]any{"comment": "Updated"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, got.Rating)
	require.NotNil(t, got.Comment)
	assert.Equal(t, "Updated", *got.Comment)
}

func TestDeleteReview_403(t *testing.T) {
	svc := &mockReviewServicer{
		delete: func(context.Context, *domain.User, uuid.UUID) error {
			return domain.ErrPermissionDenied
		},
	}

	rec := do(t, newHTTPHandler(deps{reviews: svc, caller: &alice}), http.MethodDelete, "/reviews/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
