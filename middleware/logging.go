package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartoffice-console/metrics"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RouteLabel collapses room and office ids so metric labels stay bounded:
// /api/rooms/r-5/config becomes /api/rooms/{roomId}/config.
func RouteLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 && parts[0] == "api" {
		switch parts[1] {
		case "rooms":
			parts[2] = "{roomId}"
		case "offices":
			parts[2] = "{officeId}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// Logging logs each request with its status, duration and request id.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}
		elapsed := time.Since(start)

		route := RouteLabel(r.URL.Path)
		status := strconv.Itoa(sw.status)
		metrics.ObserveHTTP(r.Method, route, status)
		metrics.ObserveHTTPDuration(r.Method, route, status, elapsed.Seconds())

		reqID, _ := r.Context().Value("request_id").(string)
		level := slog.LevelInfo
		if sw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http_request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("route", route),
			slog.Int("status", sw.status),
			slog.Int("bytes", sw.bytes),
			slog.Duration("duration", elapsed),
			slog.String("client_ip", ClientIP(r)),
			slog.String("request_id", reqID),
		)
	})
}
