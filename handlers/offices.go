package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"smartoffice-console/backend"
	"smartoffice-console/middleware"
	"smartoffice-console/models"
	"smartoffice-console/utils"
)

type OfficeHandler struct {
	Backend *backend.Client
}

func NewOfficeHandler(b *backend.Client) *OfficeHandler {
	return &OfficeHandler{Backend: b}
}

func (h *OfficeHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	offices, err := h.Backend.ListOffices(r.Context(), sess.AccessToken)
	if err != nil {
		writeBackendError(w, err, "Failed to load offices")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"offices": offices, "count": len(offices)})
}

func (h *OfficeHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	var req models.CreateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	officeID, err := h.Backend.CreateOffice(r.Context(), sess.AccessToken, req)
	if err != nil {
		writeBackendError(w, err, "Failed to create office")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, models.Office{
		OfficeID:     officeID,
		Name:         req.OfficeName,
		Address:      req.Address,
		ManagerName:  req.ManagerName,
		ManagerEmail: req.ManagerEmail,
	})
}

func (h *OfficeHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	detail, err := h.Backend.GetOfficeDetail(r.Context(), sess.AccessToken, r.PathValue("officeId"))
	if err != nil {
		writeBackendError(w, err, "Failed to load office")
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// Update saves office fields, then manager fields, and answers the office as
// the backend reports it afterwards.
func (h *OfficeHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	officeID := r.PathValue("officeId")

	var req models.UpdateOfficeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	officeUpdates := map[string]string{}
	if req.Name != "" {
		officeUpdates["name"] = req.Name
	}
	if req.Address != "" {
		officeUpdates["address"] = req.Address
	}
	managerUpdates := map[string]string{}
	if req.ManagerName != "" {
		managerUpdates["name"] = req.ManagerName
	}
	if req.ManagerStatus != "" {
		managerUpdates["status"] = req.ManagerStatus
	}
	if len(officeUpdates) == 0 && len(managerUpdates) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "No changes")
		return
	}

	// Resolve the manager before writing anything.
	var managerID string
	if len(managerUpdates) > 0 {
		current, err := h.Backend.GetOfficeDetail(r.Context(), sess.AccessToken, officeID)
		if err != nil {
			writeBackendError(w, err, "Failed to load office")
			return
		}
		if current.Manager == nil || current.Manager.UserID == "" {
			utils.WriteError(w, http.StatusBadRequest, "Office has no manager")
			return
		}
		managerID = current.Manager.UserID
	}

	if len(officeUpdates) > 0 {
		if err := h.Backend.UpdateOffice(r.Context(), sess.AccessToken, officeID, officeUpdates); err != nil {
			writeBackendError(w, err, "Failed to update office")
			return
		}
	}
	if managerID != "" {
		if err := h.Backend.UpdateManager(r.Context(), sess.AccessToken, managerID, managerUpdates); err != nil {
			writeBackendError(w, err, "Failed to update manager")
			return
		}
	}

	detail, err := h.Backend.GetOfficeDetail(r.Context(), sess.AccessToken, officeID)
	if err != nil {
		// Saved; only the refetch failed.
		slog.Warn("office_refetch_failed", slog.String("office_id", officeID), slog.String("error", err.Error()))
		utils.WriteJSON(w, http.StatusOK, map[string]any{"officeId": officeID, "stale": true})
		return
	}
	utils.WriteJSON(w, http.StatusOK, detail)
}

// Delete removes an office and its manager. The body must carry
// {"confirm": true}.
func (h *OfficeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Confirm {
		utils.WriteError(w, http.StatusBadRequest, "Confirmation required")
		return
	}

	if err := h.Backend.DeleteOffice(r.Context(), sess.AccessToken, r.PathValue("officeId")); err != nil {
		writeBackendError(w, err, "Failed to delete office")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
