package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rental-api/internal/domain"
)

// BookingRepo defines the persistence operations for Bookings.
type BookingRepo interface {
	// Create inserts a booking. Status is not written: the column default
	// ('pending') applies.
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)

	// GetByID returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// List returns bookings matching every clause of q.
	List(ctx context.Context, q domain.BookingQuery) ([]domain.Booking, error)

	// Update overwrites listing, dates, guests, and total price. Status is
	// written only when booking.Status is non-empty, so an update that does
	// not name a status cannot undo a concurrent cancel or confirm.
	// The guest (user) is never written.
	Update(ctx context.Context, booking domain.Booking) (domain.Booking, error)

	// Delete returns domain.ErrNotFound if the booking does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// TransitionStatus atomically moves a booking to status `to` unless it is
	// already there. Returns domain.ErrNotFound for an unknown id and a
	// *domain.StateTransitionError when the booking already has status `to`.
	TransitionStatus(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (domain.Booking, error)
}

// pgBookingRepo is the Postgres implementation of BookingRepo.
type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingSelect = `
	SELECT b.id, b.listing_id, b.user_id, u.username, b.check_in_date, b.check_out_date,
	       b.number_of_guests, (b.total_price * 100)::bigint, b.status,
	       b.created_at, b.updated_at
	FROM bookings b
	JOIN users u ON u.id = b.user_id`

var bookingColumns = map[string]string{
	"check_in_date":  "b.check_in_date",
	"check_out_date": "b.check_out_date",
	"created_at":     "b.created_at",
}

// Create inserts a booking row and returns the persisted record.
func (r *pgBookingRepo) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (listing_id, user_id, check_in_date, check_out_date,
		                      number_of_guests, total_price)
		VALUES (@listing_id, @user_id, @check_in_date, @check_out_date,
		        @number_of_guests, @total_cents::bigint / 100.0)
		RETURNING id`

	args := bookingArgs(booking)
	args["user_id"] = booking.User.ID

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", mapError(err))
	}

	result, err := r.GetByID(ctx, uuid.UUID(id.Bytes))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a booking by primary key.
func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	q := bookingSelect + ` WHERE b.id = @id`

	result, err := scanBooking(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}

	one := []domain.Booking{result}
	if err := attachListings(ctx, r.db, one); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: listing: %w", err)
	}
	return one[0], nil
}

// List applies the structured filters and the username clause independently;
// a booking is returned only when it satisfies all of them.
func (r *pgBookingRepo) List(ctx context.Context, bq domain.BookingQuery) ([]domain.Booking, error) {
	f := newFilter()
	if bq.ListingID != nil {
		f.add("b.listing_id = @listing_id", "listing_id", *bq.ListingID)
	}
	if bq.UserID != nil {
		f.add("b.user_id = @user_id", "user_id", *bq.UserID)
	}
	if bq.Username != nil {
		f.add("u.username = @username", "username", *bq.Username)
	}
	if bq.Status != nil {
		f.add("b.status = @status", "status", string(*bq.Status))
	}
	if bq.CheckIn != nil {
		f.add("b.check_in_date = @check_in_date", "check_in_date", dateArg(*bq.CheckIn))
	}
	if bq.CheckOut != nil {
		f.add("b.check_out_date = @check_out_date", "check_out_date", dateArg(*bq.CheckOut))
	}

	q := bookingSelect + f.clause() + orderBy(bq.Ordering, bookingColumns, "b.id") + f.page(bq.Pagination)

	rows, err := r.db.Query(ctx, q, f.args)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: %w", mapError(err))
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.List: scan: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: rows: %w", mapError(err))
	}
	rows.Close()

	if err := attachListings(ctx, r.db, bookings); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: listings: %w", err)
	}
	return bookings, nil
}

// Update overwrites the mutable fields of a booking.
func (r *pgBookingRepo) Update(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET listing_id       = @listing_id,
		    check_in_date    = @check_in_date,
		    check_out_date   = @check_out_date,
		    number_of_guests = @number_of_guests,
		    total_price      = @total_cents::bigint / 100.0,
		    status           = COALESCE(NULLIF(@status::text, ''), status),
		    updated_at       = now()
		WHERE id = @id
		RETURNING id`

	args := bookingArgs(booking)
	args["id"] = booking.ID
	args["status"] = string(booking.Status)

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Update: %w", mapError(err))
	}

	result, err := r.GetByID(ctx, booking.ID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a booking by primary key.
func (r *pgBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM bookings WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookingRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// TransitionStatus is a compare-and-swap on the status column: the UPDATE
// only matches when the booking is not already in the target status, so two
// concurrent identical transitions cannot both succeed.
func (r *pgBookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, to domain.BookingStatus) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status = @to, updated_at = now()
		WHERE id = @id AND status <> @to
		RETURNING id`

	var updated pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "to": string(to)}).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		// Nothing matched: either the booking is missing or it already has
		// the target status.
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.TransitionStatus: %w", mapError(getErr))
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.TransitionStatus: %w",
			&domain.StateTransitionError{Status: current.Status})
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.TransitionStatus: %w", err)
	}

	result, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.TransitionStatus: %w", err)
	}
	return result, nil
}

// attachListings nests each booking's listing, loading every distinct
// listing once.
func attachListings(ctx context.Context, db db, bookings []domain.Booking) error {
	seen := make(map[uuid.UUID]bool, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		if !seen[b.ListingID] {
			seen[b.ListingID] = true
			ids = append(ids, b.ListingID)
		}
	}

	listings, err := listingsByID(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range bookings {
		if l, ok := listings[bookings[i].ListingID]; ok {
			bookings[i].Listing = &l
		}
	}
	return nil
}

func bookingArgs(b domain.Booking) pgx.NamedArgs {
	return pgx.NamedArgs{
		"listing_id":       b.ListingID,
		"check_in_date":    dateArg(b.CheckIn),
		"check_out_date":   dateArg(b.CheckOut),
		"number_of_guests": b.NumberOfGuests,
		"total_cents":      b.TotalPrice.Cents(),
	}
}

// scanBooking maps a single bookingSelect row into a domain.Booking.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b                     domain.Booking
		id, listingID, userID pgtype.UUID
		checkIn, checkOut     pgtype.Date
		cents                 int64
		status                string
	)

	err := s.Scan(&id, &listingID, &userID, &b.User.Username, &checkIn, &checkOut,
		&b.NumberOfGuests, &cents, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Booking{}, mapError(err)
	}

	b.ID = uuid.UUID(id.Bytes)
	b.ListingID = uuid.UUID(listingID.Bytes)
	b.User.ID = uuid.UUID(userID.Bytes)
	b.CheckIn = checkIn.Time
	b.CheckOut = checkOut.Time
	b.TotalPrice = domain.Money(cents)
	b.Status = domain.BookingStatus(status)
	return b, nil
}
