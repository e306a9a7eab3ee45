package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"smartoffice-console/backend"
	"smartoffice-console/middleware"
	"smartoffice-console/models"
	"smartoffice-console/roomconfig"
	"smartoffice-console/utils"
)

type RoomHandler struct {
	Backend *backend.Client
	Rooms   *roomconfig.Registry
}

func NewRoomHandler(b *backend.Client, rooms *roomconfig.Registry) *RoomHandler {
	return &RoomHandler{Backend: b, Rooms: rooms}
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	officeID := middleware.OfficeFrom(r.Context())

	rooms, err := h.Backend.ListRooms(r.Context(), sess.AccessToken, officeID)
	if err != nil {
		writeBackendError(w, err, "Failed to load rooms")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"officeId": officeID, "rooms": rooms})
}

// CreateRoom adds a room to the scoped office. The answer carries the device
// credentials, which the backend issues only once.
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	officeID := middleware.OfficeFrom(r.Context())

	var req models.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	room, err := h.Backend.CreateRoom(r.Context(), sess.AccessToken, officeID, req.RoomID)
	if err != nil {
		writeBackendError(w, err, "Failed to create room")
		return
	}
	slog.Info("room_created", slog.String("office_id", officeID), slog.String("room_id", req.RoomID), slog.String("thing", room.ThingName))
	utils.WriteJSON(w, http.StatusCreated, room)
}

const (
	defaultSensorHours = 24
	maxSensorHours     = 168
)

// SensorData returns the room's recent readings for charting. A failed fetch
// answers an empty series; only an expired backend session is an error.
func (h *RoomHandler) SensorData(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	roomID := r.PathValue("roomId")

	hours := defaultSensorHours
	if q := r.URL.Query().Get("hours"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > maxSensorHours {
			utils.WriteError(w, http.StatusBadRequest, "hours must be between 1 and 168")
			return
		}
		hours = n
	}

	readings, err := h.Backend.GetSensorData(r.Context(), sess.AccessToken, roomID, hours)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			writeBackendError(w, err, "Failed to load sensor data")
			return
		}
		slog.Warn("sensor_data_failed", slog.String("room_id", roomID), slog.String("error", err.Error()))
		readings = []models.SensorReading{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"roomId": roomID, "hours": hours, "data": readings})
}

// GetConfig opens the room view for the session and loads it on first open.
// ?refresh=true forces another load. A failed load still answers 200 with the
// fallback configuration and fallback=true.
func (h *RoomHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	sess, sid := middleware.SessionFrom(r.Context())
	scope := roomconfig.Scope{
		OfficeID: middleware.OfficeFrom(r.Context()),
		RoomID:   r.PathValue("roomId"),
		Token:    sess.AccessToken,
		User:     sess.UserEmail,
	}

	view, created := h.Rooms.Open(sid, scope)
	if created || r.URL.Query().Get("refresh") == "true" {
		view.Load(r.Context())
	}
	utils.WriteJSON(w, http.StatusOK, view.Snapshot())
}

func (h *RoomHandler) view(w http.ResponseWriter, r *http.Request) (*roomconfig.View, bool) {
	_, sid := middleware.SessionFrom(r.Context())
	view, ok := h.Rooms.Get(sid, r.PathValue("roomId"))
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "Room view not open")
		return nil, false
	}
	return view, true
}

func writeViewError(w http.ResponseWriter, err error) {
	var ve *roomconfig.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.WriteJSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "field": ve})
	case errors.Is(err, roomconfig.ErrSaveInProgress), errors.Is(err, roomconfig.ErrNotConfirming):
		utils.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, roomconfig.ErrConfirmationRequired):
		utils.WriteError(w, http.StatusBadRequest, "Confirmation required")
	case errors.Is(err, roomconfig.ErrViewClosed):
		utils.WriteError(w, http.StatusNotFound, "Room view not open")
	default:
		writeBackendError(w, err, "Room request failed")
	}
}

func (h *RoomHandler) StageDraft(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	var edit models.DraftEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(edit); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	state, err := view.StageEdit(models.Channel(edit.Channel), roomconfig.Field(edit.Field), edit.Value)
	if err != nil {
		writeViewError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, state)
}

func (h *RoomHandler) RequestSave(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	prompt, err := view.RequestSave()
	if err != nil {
		writeViewError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, prompt)
}

func (h *RoomHandler) CancelSave(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	view.CancelSave()
	utils.WriteJSON(w, http.StatusOK, view.Snapshot())
}

// CommitSave persists the confirmed draft. A backend failure answers 502 with
// the state, which keeps the draft and carries the error notice.
func (h *RoomHandler) CommitSave(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}

	err := view.CommitSave(r.Context())
	switch {
	case err == nil:
		utils.WriteJSON(w, http.StatusOK, view.Snapshot())
	case errors.Is(err, roomconfig.ErrSaveInProgress),
		errors.Is(err, roomconfig.ErrNotConfirming),
		errors.Is(err, roomconfig.ErrViewClosed):
		writeViewError(w, err)
	default:
		utils.WriteJSON(w, http.StatusBadGateway, map[string]any{
			"error": roomconfig.MessageSaveFailed,
			"state": view.Snapshot(),
		})
	}
}

// CloseView drops the session's view of the room, discarding its draft.
func (h *RoomHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	_, sid := middleware.SessionFrom(r.Context())
	h.Rooms.CloseRoom(sid, r.PathValue("roomId"))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRoom removes a room. The body must carry {"confirm": true}.
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	sess, sid := middleware.SessionFrom(r.Context())
	roomID := r.PathValue("roomId")

	var req models.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if view, ok := h.Rooms.Get(sid, roomID); ok {
		if err := view.DeleteRoom(r.Context(), req.Confirm); err != nil {
			writeViewError(w, err)
			return
		}
		h.Rooms.CloseRoom(sid, roomID)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !req.Confirm {
		writeViewError(w, roomconfig.ErrConfirmationRequired)
		return
	}
	officeID := middleware.OfficeFrom(r.Context())
	if err := h.Backend.DeleteRoom(r.Context(), sess.AccessToken, officeID, roomID); err != nil {
		writeBackendError(w, err, "Failed to delete room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
