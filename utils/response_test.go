package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteErrorEnvelope(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	WriteError(w, http.StatusNotFound, "resource not found")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if body["error"] != "resource not found" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestWriteRedirect(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	WriteRedirect(w, http.StatusUnauthorized, "Authentication required", "/login")

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if w.Code != http.StatusUnauthorized || body["redirect"] != "/login" {
		t.Fatalf("status = %d body = %v", w.Code, body)
	}
}
