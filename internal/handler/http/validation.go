package http

import (
	"net/http"

	"notify-dispatch/internal/handler/http/respond"
)

const (
	maxPathLength = 2048
	// MaxBodyBytes bounds JSON request bodies. Messages are capped far
	// lower by validation.
	MaxBodyBytes = 1 << 20
)

// InputValidation rejects oversized paths and caps request bodies.
func InputValidation(maxBody int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBody)
			}
			next.ServeHTTP(w, r)
		})
	}
}
