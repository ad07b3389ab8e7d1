// Package events publishes booking lifecycle events. Production uses Kafka;
// without brokers configured events are written to the structured log.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/domain"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// Event is the payload published for a booking state change.
type Event struct {
	Type       string               `json:"type"`
	BookingID  uuid.UUID            `json:"booking_id"`
	ListingID  uuid.UUID            `json:"listing_id"`
	UserID     uuid.UUID            `json:"user_id"`
	Status     domain.BookingStatus `json:"status"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewBookingEvent builds an event of type typ describing b.
func NewBookingEvent(typ string, b domain.Booking) Event {
	return Event{
		Type:       typ,
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		UserID:     b.User.ID,
		Status:     b.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LogPublisher writes every event to a logger. It never fails.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs e at info level.
func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	p.logger.InfoContext(ctx, "event",
		slog.String("type", e.Type),
		slog.String("booking_id", e.BookingID.String()),
		slog.String("listing_id", e.ListingID.String()),
		slog.String("user_id", e.UserID.String()),
		slog.String("status", string(e.Status)),
	)
	return nil
}
