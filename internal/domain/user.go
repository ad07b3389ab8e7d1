// Package domain contains the core data types for the rental API: listings,
// bookings, reviews, and the users that own them.
// This package depends only on google/uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity known to the API. Users are never created through the
// API itself; they are provisioned from verified bearer tokens issued by the
// identity provider.
type User struct {
	ID        uuid.UUID
	Username  string
	CreatedAt time.Time
}

// UserRef is the compact representation of a user embedded in listings,
// bookings, and reviews.
type UserRef struct {
	ID       uuid.UUID
	Username string
}

// IsAnonymous reports whether caller carries no identity.
// A nil *User is the anonymous caller throughout the service layer.
func IsAnonymous(caller *User) bool {
	return caller == nil || caller.ID == uuid.Nil
}
