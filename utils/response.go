package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes JSON response
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// WriteError writes error response
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteRedirect answers a guarded data route with the screen the viewer
// should be sent to instead.
func WriteRedirect(w http.ResponseWriter, status int, message, target string) {
	WriteJSON(w, status, map[string]string{"error": message, "redirect": target})
}
