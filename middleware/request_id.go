package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestID adds a request ID to context and response header. A well-formed
// X-Request-ID from the dashboard is kept so frontend and gateway logs line up.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), "request_id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
