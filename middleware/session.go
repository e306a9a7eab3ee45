package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"smartoffice-console/session"
	"smartoffice-console/utils"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "smartoffice_session"

type SessionMiddleware struct {
	Secret string
	Store  session.Store
}

func NewSessionMiddleware(secret string, store session.Store) *SessionMiddleware {
	return &SessionMiddleware{Secret: secret, Store: store}
}

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Load resolves the viewer's session. A missing or invalid token yields the
// anonymous session; the guard decides what that viewer may see.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			sid  string
			sess session.Session
		)

		if token := tokenFromRequest(r); token != "" {
			id, err := utils.ValidateSessionToken(m.Secret, token)
			if err == nil {
				s, err := m.Store.Get(r.Context(), id)
				if err != nil {
					slog.Warn("session_load_failed", slog.String("error", err.Error()))
				} else {
					sid, sess = id, s
				}
			}
		}

		ctx := context.WithValue(r.Context(), "session_id", sid)
		ctx = context.WithValue(ctx, "session", sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFrom returns the session and its id loaded by SessionMiddleware.
func SessionFrom(ctx context.Context) (session.Session, string) {
	sess, _ := ctx.Value("session").(session.Session)
	sid, _ := ctx.Value("session_id").(string)
	return sess, sid
}
