package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkordes/rental-api/internal/auth"
	"github.com/pkordes/rental-api/internal/domain"
)

// TokenVerifier resolves a bearer token to the user it identifies.
type TokenVerifier interface {
	Verify(token string) (domain.User, error)
}

// UserProvisioner records a verified user so that listings, bookings, and
// reviews can reference it.
type UserProvisioner interface {
	Upsert(ctx context.Context, user domain.User) (domain.User, error)
}

// NewAuthenticator returns a middleware that resolves the caller from an
// "Authorization: Bearer <token>" header and stores it in the request
// context. Requests without the header continue as anonymous. A header that
// is present but invalid is rejected with 401.
func NewAuthenticator(verifier TokenVerifier, users UserProvisioner, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeDetail(w, http.StatusUnauthorized, "Invalid token header.")
				return
			}

			user, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				log.DebugContext(r.Context(), "token rejected", "error", err)
				writeDetail(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			user, err = users.Upsert(r.Context(), user)
			if err != nil {
				log.ErrorContext(r.Context(), "provision user", "user_id", user.ID, "error", err)
				writeDetail(w, http.StatusUnauthorized, "Invalid token.")
				return
			}

			noteCaller(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), user)))
		})
	}
}

// writeDetail writes the API's standard error body.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
