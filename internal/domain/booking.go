package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Booking is a reservation of a listing by a guest for a date range.
// CheckIn and CheckOut are calendar dates (time component is midnight UTC).
type Booking struct {
	ID             uuid.UUID
	ListingID      uuid.UUID
	User           UserRef
	CheckIn        time.Time
	CheckOut       time.Time
	NumberOfGuests int
	TotalPrice     Money
	Status         BookingStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Listing is the booked listing, reviews included. Repositories fill it
	// on reads; writes ignore it.
	Listing *Listing
}

// Nights returns the number of nights between check-in and check-out.
func (b Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// NightsBetween counts calendar days from checkIn to checkOut. It works on
// Unix seconds because time.Duration saturates after roughly 292 years.
func NightsBetween(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int((out.Unix() - in.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// BookingOrderFields are the keys accepted by the booking ordering parameter.
var BookingOrderFields = []string{"check_in_date", "check_out_date", "created_at"}

// DefaultBookingOrder is newest first.
var DefaultBookingOrder = []OrderField{{Field: "created_at", Desc: true}}

// BookingQuery is the composed filter and ordering for booking collections.
// UserID and Username are independent clauses; when both are set a booking
// must satisfy both.
type BookingQuery struct {
	ListingID  *uuid.UUID
	UserID     *uuid.UUID
	Username   *string
	Status     *BookingStatus
	CheckIn    *time.Time
	CheckOut   *time.Time
	Ordering   []OrderField
	Pagination PaginationParams
}

// BookingPatch carries the mutable fields of a booking update.
// User is deliberately absent: it is stamped once at creation.
type BookingPatch struct {
	ListingID      *uuid.UUID
	CheckIn        *time.Time
	CheckOut       *time.Time
	NumberOfGuests *int
	Status         *BookingStatus
}

// Apply copies every non-nil field of p onto b.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.ListingID != nil {
		b.ListingID = *p.ListingID
	}
	if p.CheckIn != nil {
		b.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		b.CheckOut = *p.CheckOut
	}
	if p.NumberOfGuests != nil {
		b.NumberOfGuests = *p.NumberOfGuests
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	return b
}
