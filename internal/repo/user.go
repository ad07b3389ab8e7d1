package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rental-api/internal/domain"
)

// UserRepo persists the identities referenced by listings, bookings, and reviews.
type UserRepo interface {
	// Upsert inserts the user, or refreshes the username of an existing user
	// with the same ID. Returns domain.ErrConflict when the username already
	// belongs to a different user.
	Upsert(ctx context.Context, user domain.User) (domain.User, error)

	// GetByUsername returns domain.ErrNotFound if no user has that username.
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

// Upsert relies on DO UPDATE so that RETURNING fires on conflict too.
func (r *pgUserRepo) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, username)
		VALUES (@id, @username)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username
		RETURNING id, username, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": user.ID, "username": user.Username})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const q = `SELECT id, username, created_at FROM users WHERE username = @username`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"username": username}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByUsername: %w", err)
	}
	return result, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u  domain.User
		id pgtype.UUID
	)
	if err := s.Scan(&id, &u.Username, &u.CreatedAt); err != nil {
		return domain.User{}, mapError(err)
	}
	u.ID = uuid.UUID(id.Bytes)
	return u, nil
}
