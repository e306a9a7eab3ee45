package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"smartoffice-console/activitylog"
	"smartoffice-console/backend"
	"smartoffice-console/config"
	"smartoffice-console/guard"
	"smartoffice-console/handlers"
	"smartoffice-console/middleware"
	"smartoffice-console/roomconfig"
	"smartoffice-console/session"
	"smartoffice-console/utils"
)

type app struct {
	cfg      *config.Config
	backend  *backend.Client
	sessions session.Store
	rooms    *roomconfig.Registry
	logStore *activitylog.PGStore
	redis    *redis.Client
}

func newRouter(a *app) http.Handler {
	sessionMiddleware := middleware.NewSessionMiddleware(a.cfg.SessionSecret, a.sessions)
	rateLimit := middleware.NewRateLimitAuth(a.redis, a.cfg.LoginRateLimitMax, a.cfg.LoginRateLimitWindowSecs)
	cors := middleware.NewCORSConfig(a.cfg.CORSAllowedOrigins, a.cfg.CORSAllowedMethods, a.cfg.CORSAllowedHeaders)

	authHandler := handlers.NewAuthHandler(a.backend, a.sessions, a.rooms, a.cfg)
	navHandler := handlers.NewNavigationHandler()
	roomHandler := handlers.NewRoomHandler(a.backend, a.rooms)
	logHandler := handlers.NewLogHandler(a.backend, a.logStore)
	officeHandler := handlers.NewOfficeHandler(a.backend)

	screen := func(s guard.Screen, h http.HandlerFunc) http.Handler {
		return middleware.RequireScreen(s)(h)
	}
	office := func(s guard.Screen, h http.HandlerFunc) http.Handler {
		return middleware.RequireScreen(s)(middleware.OfficeScope(h))
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Navigation decisions
	mux.HandleFunc("GET /api/navigate", navHandler.Navigate)

	// Auth (public)
	mux.Handle("POST /api/auth/login", rateLimit.Limit(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/session", authHandler.Session)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/verify-signup", authHandler.VerifySignup)
	mux.Handle("POST /api/auth/resend-code", rateLimit.Limit(http.HandlerFunc(authHandler.ResendCode)))
	mux.Handle("POST /api/auth/forgot-password", rateLimit.Limit(http.HandlerFunc(authHandler.ForgotPassword)))
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.Handle("POST /api/profile", screen(guard.ScreenDashboard, authHandler.UpdateProfile))

	// Rooms
	mux.Handle("GET /api/rooms", office(guard.ScreenDashboard, roomHandler.ListRooms))
	mux.Handle("POST /api/rooms", office(guard.ScreenDashboard, roomHandler.CreateRoom))
	mux.Handle("GET /api/rooms/{roomId}/config", office(guard.ScreenRoom, roomHandler.GetConfig))
	mux.Handle("GET /api/rooms/{roomId}/sensor-data", screen(guard.ScreenRoom, roomHandler.SensorData))
	mux.Handle("PATCH /api/rooms/{roomId}/config/draft", screen(guard.ScreenRoom, roomHandler.StageDraft))
	mux.Handle("POST /api/rooms/{roomId}/config/confirm", screen(guard.ScreenRoom, roomHandler.RequestSave))
	mux.Handle("POST /api/rooms/{roomId}/config/cancel", screen(guard.ScreenRoom, roomHandler.CancelSave))
	mux.Handle("POST /api/rooms/{roomId}/config/commit", screen(guard.ScreenRoom, roomHandler.CommitSave))
	mux.Handle("DELETE /api/rooms/{roomId}/view", screen(guard.ScreenRoom, roomHandler.CloseView))
	mux.Handle("DELETE /api/rooms/{roomId}", office(guard.ScreenRoom, roomHandler.DeleteRoom))

	// Activity logs
	mux.Handle("GET /api/logs", screen(guard.ScreenLogs, logHandler.List))
	mux.Handle("GET /api/logs/export", screen(guard.ScreenLogs, logHandler.Export))

	// Offices (admin)
	mux.Handle("GET /api/offices", screen(guard.ScreenAdmin, officeHandler.List))
	mux.Handle("POST /api/offices", screen(guard.ScreenManagers, officeHandler.Create))
	mux.Handle("GET /api/offices/{officeId}", screen(guard.ScreenOffice, officeHandler.Get))
	mux.Handle("PATCH /api/offices/{officeId}", screen(guard.ScreenOffice, officeHandler.Update))
	mux.Handle("DELETE /api/offices/{officeId}", screen(guard.ScreenAdmin, officeHandler.Delete))

	var h http.Handler = mux
	h = sessionMiddleware.Load(h)
	h = cors.Handle(h)
	h = middleware.Recover(h)
	h = middleware.Logging(h)
	h = middleware.RequestID(h)
	return h
}
