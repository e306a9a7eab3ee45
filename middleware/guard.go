package middleware

import (
	"net/http"

	"smartoffice-console/guard"
	"smartoffice-console/metrics"
	"smartoffice-console/utils"
)

// RequireScreen gates a data route behind the screen that owns it. A redirect
// decision is answered with 401 when the viewer must log in and 403 otherwise,
// carrying the target so the client can navigate.
func RequireScreen(screen guard.Screen) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := SessionFrom(r.Context())
			d := guard.Authorize(sess, screen)
			metrics.GuardDecision(screen.Name, d.Target)
			if d.Render {
				next.ServeHTTP(w, r)
				return
			}

			if d.Target == guard.LoginPath {
				utils.WriteRedirect(w, http.StatusUnauthorized, "Authentication required", d.Target)
				return
			}
			utils.WriteRedirect(w, http.StatusForbidden, "Insufficient permissions", d.Target)
		})
	}
}
