package repo

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rental-api/internal/domain"
)

// ListingRepo defines the persistence operations for Listings.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type ListingRepo interface {
	// Create inserts a new listing owned by listing.Host.ID and returns the
	// persisted record with id, timestamps, and host username populated.
	Create(ctx context.Context, listing domain.Listing) (domain.Listing, error)

	// GetByID retrieves a single listing by its UUID primary key.
	// Returns domain.ErrNotFound if no listing with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)

	// List returns listings matching every clause of q.
	List(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)

	// Update overwrites the mutable fields of an existing listing. The host is
	// never written. Returns domain.ErrNotFound if no listing with that ID exists.
	Update(ctx context.Context, listing domain.Listing) (domain.Listing, error)

	// Delete removes a listing by ID together with its bookings and reviews.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgListingRepo is the Postgres implementation of ListingRepo.
type pgListingRepo struct {
	db db
}

// NewListingRepo constructs a ListingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewListingRepo(db db) ListingRepo {
	return &pgListingRepo{db: db}
}

// listingSelect joins the host's username and the review aggregates.
// Prices are read as integer cents.
const listingSelect = `
	SELECT l.id, l.host_id, u.username, l.title, l.description, l.location,
	       (l.price_per_night * 100)::bigint, l.bedrooms, l.bathrooms, l.max_guests,
	       l.is_available, COALESCE(rs.avg_rating, 0)::float8, COALESCE(rs.total, 0),
	       l.created_at, l.updated_at
	FROM listings l
	JOIN users u ON u.id = l.host_id
	LEFT JOIN LATERAL (
		SELECT avg(r.rating) AS avg_rating, count(*) AS total
		FROM reviews r
		WHERE r.listing_id = l.id
	) rs ON true`

var listingColumns = map[string]string{
	"price_per_night": "l.price_per_night",
	"created_at":      "l.created_at",
	"title":           "l.title",
}

// Create inserts a new listing row and returns the full persisted record.
func (r *pgListingRepo) Create(ctx context.Context, listing domain.Listing) (domain.Listing, error) {
	const q = `
		INSERT INTO listings (host_id, title, description, location, price_per_night,
		                      bedrooms, bathrooms, max_guests, is_available)
		VALUES (@host_id, @title, @description, @location, @price_cents::bigint / 100.0,
		        @bedrooms, @bathrooms, @max_guests, @is_available)
		RETURNING id`

	var id pgtype.UUID
	err := r.db.QueryRow(ctx, q, listingArgs(listing)).Scan(&id)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.Create: %w", mapError(err))
	}

	result, err := r.GetByID(ctx, uuid.UUID(id.Bytes))
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a listing by primary key.
func (r *pgListingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	q := listingSelect + ` WHERE l.id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanListing(row)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByID: %w", err)
	}

	one := []domain.Listing{result}
	if err := attachReviews(ctx, r.db, one); err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.GetByID: reviews: %w", err)
	}
	return one[0], nil
}

// List builds the WHERE clause from the non-nil filters of q plus one
// predicate per search term, then applies ordering and optional paging.
func (r *pgListingRepo) List(ctx context.Context, lq domain.ListingQuery) ([]domain.Listing, error) {
	f := newFilter()
	if lq.Location != nil {
		f.add("l.location = @location", "location", *lq.Location)
	}
	if lq.IsAvailable != nil {
		f.add("l.is_available = @is_available", "is_available", *lq.IsAvailable)
	}
	if lq.Bedrooms != nil {
		f.add("l.bedrooms = @bedrooms", "bedrooms", *lq.Bedrooms)
	}
	if lq.Bathrooms != nil {
		f.add("l.bathrooms = @bathrooms", "bathrooms", *lq.Bathrooms)
	}
	for i, term := range lq.Search {
		name := fmt.Sprintf("term%d", i)
		f.add(fmt.Sprintf(
			"(l.title ILIKE @%[1]s OR l.description ILIKE @%[1]s OR l.location ILIKE @%[1]s)", name),
			name, containsPattern(term))
	}

	q := listingSelect + f.clause() + orderBy(lq.Ordering, listingColumns, "l.id") + f.page(lq.Pagination)

	rows, err := r.db.Query(ctx, q, f.args)
	if err != nil {
		return nil, fmt.Errorf("repo.ListingRepo.List: %w", mapError(err))
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ListingRepo.List: scan: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ListingRepo.List: rows: %w", mapError(err))
	}
	rows.Close()

	if err := attachReviews(ctx, r.db, listings); err != nil {
		return nil, fmt.Errorf("repo.ListingRepo.List: reviews: %w", err)
	}
	return listings, nil
}

// Update overwrites the mutable fields of a listing and returns the updated record.
func (r *pgListingRepo) Update(ctx context.Context, listing domain.Listing) (domain.Listing, error) {
	const q = `
		UPDATE listings
		SET title           = @title,
		    description     = @description,
		    location        = @location,
		    price_per_night = @price_cents::bigint / 100.0,
		    bedrooms        = @bedrooms,
		    bathrooms       = @bathrooms,
		    max_guests      = @max_guests,
		    is_available    = @is_available,
		    updated_at      = now()
		WHERE id = @id
		RETURNING id`

	args := listingArgs(listing)
	args["id"] = listing.ID

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.Update: %w", mapError(err))
	}

	result, err := r.GetByID(ctx, listing.ID)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("repo.ListingRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a listing by primary key. Bookings and reviews cascade.
func (r *pgListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM listings WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ListingRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ListingRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// listingsByID loads the listings with the given ids, reviews included.
// Unknown ids are absent from the result.
func listingsByID(ctx context.Context, db db, ids []uuid.UUID) (map[uuid.UUID]domain.Listing, error) {
	found := make(map[uuid.UUID]domain.Listing, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	q := listingSelect + ` WHERE l.id = ANY(@ids::text[]::uuid[])`
	rows, err := db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0, len(ids))
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	rows.Close()

	if err := attachReviews(ctx, db, listings); err != nil {
		return nil, err
	}
	for _, l := range listings {
		found[l.ID] = l
	}
	return found, nil
}

// attachReviews fills Reviews on every listing with a single query, oldest
// review first. Listings without reviews get an empty slice.
func attachReviews(ctx context.Context, db db, listings []domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	index := make(map[uuid.UUID]int, len(listings))
	ids := make([]uuid.UUID, len(listings))
	for i := range listings {
		listings[i].Reviews = []domain.Review{}
		index[listings[i].ID] = i
		ids[i] = listings[i].ID
	}

	q := reviewSelect + ` WHERE r.listing_id = ANY(@ids::text[]::uuid[]) ORDER BY r.created_at, r.id`
	rows, err := db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return err
		}
		i := index[rv.ListingID]
		listings[i].Reviews = append(listings[i].Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return mapError(err)
	}
	return nil
}

func listingArgs(l domain.Listing) pgx.NamedArgs {
	return pgx.NamedArgs{
		"host_id":      l.Host.ID,
		"title":        l.Title,
		"description":  l.Description,
		"location":     l.Location,
		"price_cents":  l.PricePerNight.Cents(),
		"bedrooms":     l.Bedrooms,
		"bathrooms":    l.Bathrooms,
		"max_guests":   l.MaxGuests,
		"is_available": l.IsAvailable,
	}
}

// scanListing maps a single listingSelect row into a domain.Listing.
func scanListing(s scanner) (domain.Listing, error) {
	var (
		l          domain.Listing
		id, hostID pgtype.UUID
		cents      int64
		avg        float64
		total      int64
	)

	err := s.Scan(&id, &hostID, &l.Host.Username, &l.Title, &l.Description, &l.Location,
		&cents, &l.Bedrooms, &l.Bathrooms, &l.MaxGuests,
		&l.IsAvailable, &avg, &total,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return domain.Listing{}, mapError(err)
	}

	l.ID = uuid.UUID(id.Bytes)
	l.Host.ID = uuid.UUID(hostID.Bytes)
	l.PricePerNight = domain.Money(cents)
	l.AverageRating = math.Round(avg*100) / 100
	l.TotalReviews = int(total)
	return l, nil
}
