// Package middleware provides reusable HTTP middleware for the rental API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// corsMaxAge is how long, in seconds, a browser may cache a preflight result.
const corsMaxAge = 600

// NewCORSHandler returns a middleware that lets browser clients on
// allowedOrigins call the API with bearer tokens. PATCH is allowed for
// partial updates, and X-Request-Id is exposed so a front end can quote it
// when reporting a failed request.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         corsMaxAge,
	})
	return c.Handler
}
