package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartoffice-console/activitylog"
	"smartoffice-console/backend"
	"smartoffice-console/config"
	"smartoffice-console/database"
	"smartoffice-console/events"
	"smartoffice-console/roomconfig"
	"smartoffice-console/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Load config
	cfg := config.Load()

	// Connect to databases
	db, err := database.Connect(ctx, cfg.PostgresURL(), cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		slog.Error("database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var sessions session.Store
	if db.Redis != nil {
		sessions = session.NewRedisStore(db.Redis, cfg.SessionTTL)
	} else {
		slog.Warn("using in-memory session store")
		sessions = session.NewMemoryStore()
	}

	var observers []roomconfig.CommitObserver

	var logStore *activitylog.PGStore
	if db.Postgres != nil {
		logStore = activitylog.NewPGStore(db.Postgres)
		if err := logStore.Migrate(ctx); err != nil {
			slog.Error("activity log migration failed", slog.Any("error", err))
			os.Exit(1)
		}
		observers = append(observers, activitylog.NewRecorder(logStore))
	}

	if cfg.MQTTBrokerURL != "" {
		publisher := events.NewPublisher(cfg.MQTTBrokerURL, cfg.MQTTClientID, cfg.MQTTTopicRoot)
		if err := publisher.Connect(); err != nil {
			slog.Warn("mqtt unavailable, committed configs will not be published", slog.Any("error", err))
		} else {
			defer publisher.Disconnect()
			observers = append(observers, publisher)
		}
	}

	client := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	rooms := roomconfig.NewRegistry(client, roomconfig.Options{
		SendTargetsForNonAutoModes: cfg.SendTargetsForNonAutoModes,
		Observers:                  observers,
	})

	refresher := roomconfig.NewRefresher(rooms, cfg.RoomPollInterval, cfg.BackendTimeout)
	if err := refresher.Start(); err != nil {
		slog.Error("room refresher failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	defer refresher.Stop()

	handler := newRouter(&app{
		cfg:      cfg,
		backend:  client,
		sessions: sessions,
		rooms:    rooms,
		logStore: logStore,
		redis:    db.Redis,
	})

	// Start server
	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("smartoffice console running", slog.String("addr", addr), slog.String("backend", cfg.BackendBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSecs)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.Any("error", err))
	}
	slog.Info("server stopped")
}
