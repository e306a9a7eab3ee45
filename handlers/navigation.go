package handlers

import (
	"net/http"

	"smartoffice-console/guard"
	"smartoffice-console/metrics"
	"smartoffice-console/middleware"
	"smartoffice-console/utils"
)

// NavigationResponse is the routing decision for one dashboard path.
type NavigationResponse struct {
	Screen      string `json:"screen"`
	Requirement string `json:"requirement"`
	Decision    string `json:"decision"`
	Target      string `json:"target,omitempty"`
}

type NavigationHandler struct{}

func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// Navigate answers GET /api/navigate?screen=/room/r-5. The decision is always
// a 200: a redirect is a navigation, not an error.
func (h *NavigationHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("screen")
	if path == "" {
		utils.WriteError(w, http.StatusBadRequest, "screen is required")
		return
	}

	sess, _ := middleware.SessionFrom(r.Context())
	screen, d := guard.Navigate(sess, path)
	metrics.GuardDecision(screen.Name, d.Target)

	resp := NavigationResponse{
		Screen:      screen.Name,
		Requirement: screen.Requirement.Kind.String(),
		Decision:    "render",
	}
	if !d.Render {
		resp.Decision = "redirect"
		resp.Target = d.Target
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}
