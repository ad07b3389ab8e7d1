// Package repo contains all database access logic for the rental API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rental-api/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to
// be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres SQLSTATE codes that mapError translates.
const (
	uniqueViolation          = "23505"
	characterNotInRepertoire = "22021" // NUL bytes and invalid UTF-8 in text
	untranslatableCharacter  = "22P05"
)

// mapError translates driver errors into domain sentinels.
// pgx.ErrNoRows becomes domain.ErrNotFound; unique violations become
// domain.ErrConflict; text the database cannot store becomes
// domain.ErrValidation. Anything else is returned unchanged.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	case characterNotInRepertoire, untranslatableCharacter:
		return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.Message)
	}
	return err
}

// filter accumulates WHERE predicates and their named arguments.
type filter struct {
	where []string
	args  pgx.NamedArgs
}

func newFilter() *filter {
	return &filter{args: pgx.NamedArgs{}}
}

// add appends predicate, binding value under name.
func (f *filter) add(predicate, name string, value any) {
	f.where = append(f.where, predicate)
	f.args[name] = value
}

// clause renders " WHERE a AND b", or "" when there are no predicates.
func (f *filter) clause() string {
	if len(f.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.where, " AND ")
}

// page renders a LIMIT/OFFSET clause when pagination is enabled.
func (f *filter) page(p domain.PaginationParams) string {
	if !p.Enabled() {
		return ""
	}
	f.args["limit"] = p.Limit
	f.args["offset"] = p.Offset()
	return " LIMIT @limit OFFSET @offset"
}

// orderBy renders an ORDER BY clause from whitelisted fields. columns maps
// ordering keys to SQL expressions; unknown keys are skipped. tiebreak is
// appended so that paging is stable.
func orderBy(fields []domain.OrderField, columns map[string]string, tiebreak string) string {
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := columns[f.Field]
		if !ok {
			continue
		}
		if f.Desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	parts = append(parts, tiebreak)
	return " ORDER BY " + strings.Join(parts, ", ")
}

// likeEscaper escapes LIKE wildcards so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching term anywhere in a column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// dateArg binds t as a calendar DATE, dropping the time component.
func dateArg(t time.Time) pgtype.Date {
	return pgtype.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Valid: true}
}

// uuidStrings renders ids for an @ids::text[]::uuid[] parameter.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
