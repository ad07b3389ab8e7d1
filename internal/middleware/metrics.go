package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestObserver records a finished request.
type RequestObserver interface {
	Observe(method, route string, status int, elapsed time.Duration)
}

// NewMetrics returns a middleware that reports every request to obs,
// labelled with the matched chi route pattern. Requests that match no
// route are reported as "unmatched".
func NewMetrics(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// chi fills the route context while routing, so the pattern is
			// only known after next has run.
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			obs.Observe(r.Method, route, status, time.Since(start))
		})
	}
}
