package middleware

import (
	"context"
	"net/http"

	"smartoffice-console/session"
	"smartoffice-console/utils"
)

// OfficeScope pins the office a request works on. Managers are bound to the
// office in their session; admins choose one with ?officeId=.
func OfficeScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFrom(r.Context())

		officeID := sess.OfficeID
		if sess.EffectiveRole() == session.RoleAdmin {
			if q := r.URL.Query().Get("officeId"); q != "" {
				officeID = q
			}
		}
		if officeID == "" {
			utils.WriteError(w, http.StatusBadRequest, "No office assigned")
			return
		}

		ctx := context.WithValue(r.Context(), "office_id", officeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func OfficeFrom(ctx context.Context) string {
	officeID, _ := ctx.Value("office_id").(string)
	return officeID
}
