// Package authz is the authorization gate shared by the listing, booking, and
// review services. A Policy is a plain value chosen when a service is built
// and evaluated as a pure predicate over (caller, action, target owner).
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/rental-api/internal/domain"
)

// Action classifies an operation for authorization.
type Action int

const (
	// Read covers list, retrieve, and GET sub-resources.
	Read Action = iota
	// Write covers create, update, delete, and status transitions.
	Write
)

func (a Action) String() string {
	if a == Write {
		return "write"
	}
	return "read"
}

// Policy selects how writes are authorized.
type Policy int

const (
	// RequireAuthForWrite lets anyone read and any authenticated caller write
	// any record. This is the default for every service.
	RequireAuthForWrite Policy = iota
	// OpenRead allows every action, including anonymous writes.
	OpenRead
	// RequireOwner behaves like RequireAuthForWrite and additionally restricts
	// writes on an existing record to the record's owner.
	RequireOwner
)

func (p Policy) String() string {
	switch p {
	case OpenRead:
		return "open_read"
	case RequireOwner:
		return "require_owner"
	default:
		return "require_auth_for_write"
	}
}

// Authorize reports whether caller may perform action. owner is the owning
// user of the target record, or uuid.Nil when there is no target yet (create,
// or the pre-lookup check of an update). A nil return means allowed; a denial
// wraps domain.ErrPermissionDenied.
func (p Policy) Authorize(caller *domain.User, action Action, owner uuid.UUID) error {
	if action == Read || p == OpenRead {
		return nil
	}
	if domain.IsAnonymous(caller) {
		return fmt.Errorf("authz: %w: authentication credentials were not provided", domain.ErrPermissionDenied)
	}
	if p == RequireOwner && owner != uuid.Nil && owner != caller.ID {
		return fmt.Errorf("authz: %w: caller does not own this record", domain.ErrPermissionDenied)
	}
	return nil
}
