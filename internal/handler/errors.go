package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/rental-api/internal/domain"
)

// errorBody is the API's error envelope. Errors maps request fields to the
// reason they were rejected and is only present for validation failures.
type errorBody struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

const serverErrorDetail = "A server error occurred."

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps a service error onto a status code and error body.
// Unrecognised errors are logged with the request ID and answered with a
// generic 500 so that internals never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		terr *domain.StateTransitionError
		cerr *domain.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		body := errorBody{Detail: verr.Message}
		if verr.Field != "" {
			body.Errors = map[string]string{verr.Field: verr.Message}
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.As(err, &terr):
		writeDetail(w, http.StatusBadRequest, terr.Error())
	case errors.As(err, &cerr):
		writeDetail(w, http.StatusBadRequest, cerr.Detail)
	case errors.Is(err, domain.ErrConflict):
		writeDetail(w, http.StatusBadRequest, "The record conflicts with an existing one.")
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, domain.ErrAuthenticationRequired):
		writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
	case errors.Is(err, domain.ErrPermissionDenied):
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, domain.ErrValidation):
		writeDetail(w, http.StatusBadRequest, "Invalid input.")
	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Any("error", err),
		)
		writeDetail(w, http.StatusInternalServerError, serverErrorDetail)
	}
}
