package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rental-api/internal/domain"
)

// ReviewRepo defines the persistence operations for Reviews.
type ReviewRepo interface {
	// Create returns domain.ErrConflict when the user already reviewed the listing.
	Create(ctx context.Context, review domain.Review) (domain.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error)
	List(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error)
	// Update overwrites rating and comment.
	Update(ctx context.Context, review domain.Review) (domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgReviewRepo struct {
	db db
}

// NewReviewRepo constructs a ReviewRepo backed by the provided db connection.
func NewReviewRepo(db db) ReviewRepo {
	return &pgReviewRepo{db: db}
}

const reviewSelect = `
	SELECT r.id, r.listing_id, r.user_id, u.username, r.rating, r.comment,
	       r.created_at, r.updated_at
	FROM reviews r
	JOIN users u ON u.id = r.user_id`

var reviewColumns = map[string]string{
	"rating":     "r.rating",
	"created_at": "r.created_at",
}

func (r *pgReviewRepo) Create(ctx context.Context, review domain.Review) (domain.Review, error) {
	const q = `
		INSERT INTO reviews (listing_id, user_id, rating, comment)
		VALUES (@listing_id, @user_id, @rating, @comment)
		RETURNING id`

	args := pgx.NamedArgs{
		"listing_id": review.ListingID,
		"user_id":    review.User.ID,
		"rating":     review.Rating,
		"comment":    review.Comment,
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", mapError(err))
	}

	result, err := r.GetByID(ctx, uuid.UUID(id.Bytes))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	q := reviewSelect + ` WHERE r.id = @id`

	result, err := scanReview(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgReviewRepo) List(ctx context.Context, rq domain.ReviewQuery) ([]domain.Review, error) {
	f := newFilter()
	if rq.ListingID != nil {
		f.add("r.listing_id = @listing_id", "listing_id", *rq.ListingID)
	}
	if rq.UserID != nil {
		f.add("r.user_id = @user_id", "user_id", *rq.UserID)
	}
	if rq.Rating != nil {
		f.add("r.rating = @rating", "rating", *rq.Rating)
	}

	q := reviewSelect + f.clause() + orderBy(rq.Ordering, reviewColumns, "r.id") + f.page(rq.Pagination)

	rows, err := r.db.Query(ctx, q, f.args)
	if err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.List: %w", mapError(err))
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReviewRepo.List: scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReviewRepo.List: rows: %w", mapError(err))
	}
	return reviews, nil
}

func (r *pgReviewRepo) Update(ctx context.Context, review domain.Review) (domain.Review, error) {
	const q = `
		UPDATE reviews
		SET rating = @rating, comment = @comment, updated_at = now()
		WHERE id = @id
		RETURNING id`

	args := pgx.NamedArgs{"id": review.ID, "rating": review.Rating, "comment": review.Comment}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Update: %w", mapError(err))
	}

	result, err := r.GetByID(ctx, review.ID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("repo.ReviewRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM reviews WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ReviewRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ReviewRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanReview(s scanner) (domain.Review, error) {
	var (
		rv                    domain.Review
		id, listingID, userID pgtype.UUID
	)

	err := s.Scan(&id, &listingID, &userID, &rv.User.Username, &rv.Rating, &rv.Comment,
		&rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		return domain.Review{}, mapError(err)
	}

	rv.ID = uuid.UUID(id.Bytes)
	rv.ListingID = uuid.UUID(listingID.Bytes)
	rv.User.ID = uuid.UUID(userID.Bytes)
	return rv, nil
}
