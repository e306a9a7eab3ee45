package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/api/rooms/r-5/config":        "/api/rooms/{roomId}/config",
		"/api/rooms/r-5":               "/api/rooms/{roomId}",
		"/api/rooms":                   "/api/rooms",
		"/api/offices/off-1":           "/api/offices/{officeId}",
		"/api/logs/export":             "/api/logs/export",
		"/health":                      "/health",
		"/api/rooms/r-5/config/commit": "/api/rooms/{roomId}/config/commit",
	}
	for in, want := range tests {
		if got := RouteLabel(in); got != want {
			t.Fatalf("RouteLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoggingRecordsFirstStatus(t *testing.T) {
	t.Parallel()

	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rooms/r-1/config/confirm", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusAccepted)
	}
}

func TestRecoverAnswersJSONWithRequestID(t *testing.T) {
	t.Parallel()

	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req = req.WithContext(context.WithValue(req.Context(), "request_id", "req-1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["request_id"] != "req-1" {
		t.Fatalf("request_id = %q, want req-1", body["request_id"])
	}
}
