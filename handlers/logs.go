package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"smartoffice-console/activitylog"
	"smartoffice-console/backend"
	"smartoffice-console/middleware"
	"smartoffice-console/models"
	"smartoffice-console/session"
	"smartoffice-console/utils"
)

type LogHandler struct {
	Backend *backend.Client
	// Store, when set, serves the log from PostgreSQL instead of the backend.
	Store *activitylog.PGStore
	Now   func() time.Time
}

func NewLogHandler(b *backend.Client, store *activitylog.PGStore) *LogHandler {
	return &LogHandler{Backend: b, Store: store, Now: time.Now}
}

// source picks where the log is read from. Managers only ever see their own
// office; load refuses a manager without one before this is reached.
func (h *LogHandler) source(sess session.Session) activitylog.Source {
	if h.Store != nil {
		if sess.EffectiveRole() == session.RoleAdmin {
			return h.Store
		}
		return h.Store.ForOffice(sess.OfficeID)
	}
	return activitylog.BackendSource{Backend: h.Backend, Token: sess.AccessToken}
}

func filterFromQuery(r *http.Request) (activitylog.Filter, error) {
	q := r.URL.Query()
	f := activitylog.Filter{
		Room:     q.Get("room"),
		Action:   q.Get("action"),
		User:     q.Get("user"),
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
	}
	if !activitylog.ValidDate(f.DateFrom) || !activitylog.ValidDate(f.DateTo) {
		return f, fmt.Errorf("dates must be YYYY-MM-DD")
	}
	return f, nil
}

func (h *LogHandler) load(w http.ResponseWriter, r *http.Request) ([]models.ActivityLogEntry, []models.ActivityLogEntry, bool) {
	filter, err := filterFromQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	sess, _ := middleware.SessionFrom(r.Context())
	if sess.EffectiveRole() != session.RoleAdmin && sess.OfficeID == "" {
		utils.WriteError(w, http.StatusBadRequest, "No office assigned")
		return nil, nil, false
	}
	all, err := h.source(sess).List(r.Context())
	if err != nil {
		writeBackendError(w, err, "Failed to load activity logs")
		return nil, nil, false
	}
	return all, filter.Apply(all), true
}

func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	all, entries, ok := h.load(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"logs":   entries,
		"total":  len(all),
		"facets": activitylog.FacetsOf(all),
	})
}

// Export downloads the filtered log as CSV.
func (h *LogHandler) Export(w http.ResponseWriter, r *http.Request) {
	_, entries, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := activitylog.WriteCSV(&buf, entries); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to export activity logs")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, activitylog.FileName(h.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
