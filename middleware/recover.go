package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"smartoffice-console/utils"
)

// Recover turns a handler panic into a JSON 500 carrying the request id, so a
// dashboard notice can be matched to the log line.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			reqID, _ := r.Context().Value("request_id").(string)
			slog.Error("handler_panic",
				slog.Any("error", rec),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("request_id", reqID),
				slog.String("stack", string(debug.Stack())),
			)
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"error":      "Internal server error",
				"request_id": reqID,
			})
		}()
		next.ServeHTTP(w, r)
	})
}
