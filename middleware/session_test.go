package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartoffice-console/guard"
	"smartoffice-console/session"
	"smartoffice-console/utils"
)

const testSecret = "test-session-secret"

func storeWith(t *testing.T, sid string, s session.Session) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	if err := store.Set(context.Background(), sid, s); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	return store
}

func tokenFor(t *testing.T, sid string) string {
	t.Helper()
	token, err := utils.GenerateSessionToken(testSecret, sid, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken error: %v", err)
	}
	return token
}

func TestSessionMiddlewareLoadsFromBearerAndCookie(t *testing.T) {
	t.Parallel()

	manager := session.Session{Authenticated: true, Role: session.RoleManager, OfficeID: "off-1"}
	mw := NewSessionMiddleware(testSecret, storeWith(t, "sid-1", manager))

	h := mw.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, sid := SessionFrom(r.Context())
		if sid != "sid-1" || !sess.Authenticated || sess.OfficeID != "off-1" {
			t.Errorf("session = %+v sid = %q", sess, sid)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "sid-1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("bearer status = %d, want %d", w.Code, http.StatusNoContent)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tokenFor(t, "sid-1")})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("cookie status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestSessionMiddlewareInvalidTokenIsAnonymous(t *testing.T) {
	t.Parallel()

	mw := NewSessionMiddleware(testSecret, storeWith(t, "sid-1", session.Session{Authenticated: true}))
	h := mw.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, sid := SessionFrom(r.Context())
		if sid != "" || sess.Authenticated {
			t.Errorf("expected anonymous session, got %+v sid %q", sess, sid)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, header := range []string{"", "Bearer not-a-token", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("header %q status = %d", header, w.Code)
		}
	}
}

func TestRequireScreen(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "admin", session.Session{Authenticated: true, Role: session.RoleAdmin, Groups: []string{"Admin"}})
	_ = store.Set(ctx, "manager", session.Session{Authenticated: true, Role: session.RoleManager, OfficeID: "off-1"})
	mw := NewSessionMiddleware(testSecret, store)

	h := mw.Load(RequireScreen(guard.ScreenManagers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name     string
		sid      string
		status   int
		redirect string
	}{
		{name: "anonymous", status: http.StatusForbidden, redirect: guard.ManagerHomePath},
		{name: "manager", sid: "manager", status: http.StatusForbidden, redirect: guard.ManagerHomePath},
		{name: "admin", sid: "admin", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/offices", nil)
		if tt.sid != "" {
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tt.sid))
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d", tt.name, w.Code, tt.status)
		}
		if tt.redirect != "" {
			var body map[string]string
			_ = json.NewDecoder(w.Body).Decode(&body)
			if body["redirect"] != tt.redirect {
				t.Fatalf("%s: redirect = %q, want %q", tt.name, body["redirect"], tt.redirect)
			}
		}
	}
}

func TestRequireScreenAnonymousGetsLogin(t *testing.T) {
	t.Parallel()

	mw := NewSessionMiddleware(testSecret, session.NewMemoryStore())
	h := mw.Load(RequireScreen(guard.ScreenRoom)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("handler should not run")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/rooms/r-5/config", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	var body map[string]string
	_ = json.NewDecoder(w.Body).Decode(&body)
	if body["redirect"] != guard.LoginPath {
		t.Fatalf("redirect = %q, want %q", body["redirect"], guard.LoginPath)
	}
}

func TestOfficeScope(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	ctx := context.Background()
	_ = store.Set(ctx, "admin", session.Session{Authenticated: true, Role: session.RoleAdmin})
	_ = store.Set(ctx, "manager", session.Session{Authenticated: true, Role: session.RoleManager, OfficeID: "off-1"})
	_ = store.Set(ctx, "unassigned", session.Session{Authenticated: true, Role: session.RoleManager})
	mw := NewSessionMiddleware(testSecret, store)

	var got string
	h := mw.Load(OfficeScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = OfficeFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		sid    string
		url    string
		status int
		office string
	}{
		{sid: "manager", url: "/api/rooms?officeId=off-9", status: http.StatusNoContent, office: "off-1"},
		{sid: "admin", url: "/api/rooms?officeId=off-9", status: http.StatusNoContent, office: "off-9"},
		{sid: "admin", url: "/api/rooms", status: http.StatusBadRequest},
		{sid: "unassigned", url: "/api/rooms", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		got = ""
		req := httptest.NewRequest(http.MethodGet, tt.url, nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, tt.sid))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != tt.status {
			t.Fatalf("%s %s: status = %d, want %d", tt.sid, tt.url, w.Code, tt.status)
		}
		if got != tt.office {
			t.Fatalf("%s %s: office = %q, want %q", tt.sid, tt.url, got, tt.office)
		}
	}
}
