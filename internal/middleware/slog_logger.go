// Package middleware provides HTTP middleware for the rental API server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// requestLog collects fields discovered by inner middleware. It travels by
// pointer so values set below the logger are visible once next returns.
type requestLog struct {
	callerID uuid.UUID
}

type requestLogKey struct{}

// noteCaller records the authenticated caller on the enclosing request log,
// if there is one.
func noteCaller(ctx context.Context, id uuid.UUID) {
	if rl, ok := ctx.Value(requestLogKey{}).(*requestLog); ok {
		rl.callerID = id
	}
}

// NewSlogLogger returns a middleware that writes one structured line per
// request: method, matched route pattern, status, duration, request ID, and
// the caller resolved by NewAuthenticator. Anonymous requests omit caller_id.
//
// Wire it after chimiddleware.RequestID and before NewAuthenticator.
func NewSlogLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rl := &requestLog{}
			r = r.WithContext(context.WithValue(r.Context(), requestLogKey{}, rl))
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"route", routePattern(r),
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if rl.callerID != uuid.Nil {
				attrs = append(attrs, "caller_id", rl.callerID.String())
			}

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "request", attrs...)
		})
	}
}

// routePattern returns the chi pattern that served r, so that
// /listings/{id} groups every listing ID under one value.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unmatched"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "unmatched"
}
