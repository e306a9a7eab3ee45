package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestIDKeepsValidIncomingID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value("request_id").(string)
	}))

	incoming := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", incoming)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if seen != incoming || w.Header().Get("X-Request-ID") != incoming {
		t.Fatalf("request id = %q, want %q", seen, incoming)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "<script>")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if seen == "<script>" || seen == "" {
		t.Fatalf("request id = %q, want a generated id", seen)
	}
}
