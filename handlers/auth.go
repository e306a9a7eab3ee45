package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"smartoffice-console/backend"
	"smartoffice-console/config"
	"smartoffice-console/guard"
	"smartoffice-console/metrics"
	"smartoffice-console/middleware"
	"smartoffice-console/models"
	"smartoffice-console/roomconfig"
	"smartoffice-console/session"
	"smartoffice-console/utils"
)

type AuthHandler struct {
	Backend  *backend.Client
	Sessions session.Store
	Rooms    *roomconfig.Registry
	Config   *config.Config
}

func NewAuthHandler(b *backend.Client, sessions session.Store, rooms *roomconfig.Registry, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Backend: b, Sessions: sessions, Rooms: rooms, Config: cfg}
}

func sessionResponse(s session.Session, token string) models.SessionResponse {
	groups := s.Groups
	if groups == nil {
		groups = []string{}
	}
	return models.SessionResponse{
		SessionToken: token,
		Role:         string(s.EffectiveRole()),
		Groups:       groups,
		OfficeID:     s.OfficeID,
		UserID:       s.UserID,
		Name:         s.UserName,
		Email:        s.UserEmail,
		Redirect:     guard.DefaultScreenForRole(s.Role),
	}
}

// sessionFromLogin merges the backend user block with the id_token claims.
// The user block wins; claims fill what it leaves out.
func sessionFromLogin(res *models.LoginResponse) session.Session {
	claims, err := utils.DecodeIdentityClaims(res.IDToken)
	if err != nil {
		claims = &utils.IdentityClaims{}
	}
	u := res.User

	groups := u.CognitoGroups
	if len(groups) == 0 {
		groups = claims.Groups
	}
	role := session.Role(strings.ToLower(u.Role))
	if role == "" {
		role = session.RoleManager
	}
	email := u.Email
	if email == "" {
		email = claims.Email
	}
	name := u.Name
	if name == "" {
		name = email
	}
	userID := u.UserID
	if userID == "" {
		userID = claims.Subject
	}

	return session.Session{
		Authenticated: true,
		Role:          role,
		Groups:        groups,
		OfficeID:      u.OfficeID,
		UserID:        userID,
		UserName:      name,
		UserEmail:     email,
		AccessToken:   res.AccessToken,
		IDToken:       res.IDToken,
		RefreshToken:  res.RefreshToken,
	}
}

// backendMessage returns the backend's own message for client errors.
func backendMessage(err error, fallback string) string {
	var se *backend.StatusError
	if errors.As(err, &se) && se.StatusCode < 500 && se.Message != "" {
		return se.Message
	}
	return fallback
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	res, err := h.Backend.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginAttempt(false)
		if errors.Is(err, backend.ErrUnauthorized) {
			utils.WriteError(w, http.StatusUnauthorized, backendMessage(err, "Invalid email or password."))
			return
		}
		slog.Error("login_failed", slog.String("error", err.Error()))
		utils.WriteError(w, http.StatusBadGateway, backendMessage(err, "Login failed. Please try again."))
		return
	}

	sess := sessionFromLogin(res)
	sid := uuid.NewString()
	if err := h.Sessions.Set(r.Context(), sid, sess); err != nil {
		slog.Error("session_store_failed", slog.String("error", err.Error()))
		utils.WriteError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	token, err := utils.GenerateSessionToken(h.Config.SessionSecret, sid, h.Config.SessionTTL)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	metrics.LoginAttempt(true)
	h.setCookie(w, token, int(h.Config.SessionTTL.Seconds()))

	utils.WriteJSON(w, http.StatusOK, sessionResponse(sess, token))
}

// Logout clears every session key even when the backend call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, sid := middleware.SessionFrom(r.Context())

	if sess.AccessToken != "" {
		if err := h.Backend.Logout(r.Context(), sess.IDToken, sess.AccessToken); err != nil {
			slog.Warn("backend_logout_failed", slog.String("error", err.Error()))
		}
	}
	if sid != "" {
		h.Rooms.CloseSession(sid)
		if err := h.Sessions.Clear(r.Context(), sid); err != nil {
			slog.Error("session_clear_failed", slog.String("error", err.Error()))
		}
	}
	h.setCookie(w, "", -1)

	utils.WriteJSON(w, http.StatusOK, map[string]string{"redirect": guard.LandingPath})
}

// Session describes the current viewer without exposing tokens.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	if !sess.Authenticated {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"session":       sessionResponse(sess, ""),
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	if err := h.Backend.Signup(r.Context(), req); err != nil {
		writeFormError(w, err, "Signup failed. Please try again.")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Account created. Check your email to verify it."})
}

// VerifySignup confirms a new account and sends the viewer to the login
// screen.
func (h *AuthHandler) VerifySignup(w http.ResponseWriter, r *http.Request) {
	var req models.VerifySignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	if err := h.Backend.VerifySignup(r.Context(), req); err != nil {
		writeFormError(w, err, "Verification failed. Please try again.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message":  "Email verified successfully. You can now login.",
		"redirect": guard.LoginPath,
	})
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req models.ResendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	if err := h.Backend.ResendCode(r.Context(), req.Email); err != nil {
		writeFormError(w, err, "Could not resend the code.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Verification code resent"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	if err := h.Backend.ForgotPassword(r.Context(), req.Email); err != nil {
		writeFormError(w, err, "Could not send reset code.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Reset code sent"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	if err := h.Backend.ConfirmForgotPassword(r.Context(), req); err != nil {
		writeFormError(w, err, "Password reset failed.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully", "redirect": guard.LoginPath})
}

// UpdateProfile saves the profile, then refetches the user's office record
// and replaces only the cached name, email and office entries.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, sid := middleware.SessionFrom(r.Context())

	var updates models.ProfileUpdates
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(updates); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ValidationErrorMessage(err))
		return
	}

	req := models.ProfileUpdateRequest{UserID: sess.UserID, Updates: updates}
	if err := h.Backend.UpdateProfile(r.Context(), sess.AccessToken, req); err != nil {
		writeBackendError(w, err, "Failed to update profile")
		return
	}

	office, err := h.Backend.GetUserOffice(r.Context(), sess.AccessToken, sess.UserID)
	if err != nil {
		// Saved, but the cache could not be refreshed; keep what was submitted.
		slog.Warn("user_office_refresh_failed", slog.String("error", err.Error()))
		office = &models.UserOffice{Name: updates.Name, Email: updates.Email, OfficeID: sess.OfficeID}
	}
	if office.Name != "" {
		sess.UserName = office.Name
	} else if updates.Name != "" {
		sess.UserName = updates.Name
	}
	if office.Email != "" {
		sess.UserEmail = office.Email
	} else if updates.Email != "" {
		sess.UserEmail = updates.Email
	}
	sess.OfficeID = office.OfficeID

	if err := h.Sessions.Set(r.Context(), sid, sess); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	utils.WriteJSON(w, http.StatusOK, sessionResponse(sess, ""))
}

// writeFormError answers a rejected public form. A backend client error is the
// user's to fix and comes back as 400 with the backend's message.
func writeFormError(w http.ResponseWriter, err error, fallback string) {
	var se *backend.StatusError
	if errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError {
		utils.WriteError(w, http.StatusBadRequest, backendMessage(err, fallback))
		return
	}
	slog.Error("backend_form_failed", slog.String("error", err.Error()))
	utils.WriteError(w, http.StatusBadGateway, fallback)
}

// writeBackendError maps a failed backend call to a JSON notice.
func writeBackendError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		utils.WriteRedirect(w, http.StatusUnauthorized, "Session expired", guard.LoginPath)
	case errors.Is(err, backend.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, backendMessage(err, message))
	case errors.Is(err, backend.ErrConflict):
		utils.WriteError(w, http.StatusConflict, backendMessage(err, message))
	default:
		slog.Error("backend_call_failed", slog.String("error", err.Error()))
		utils.WriteError(w, http.StatusBadGateway, message)
	}
}
