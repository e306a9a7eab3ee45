package roomconfig

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher reloads every open view on a fixed interval.
type Refresher struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
}

func NewRefresher(registry *Registry, interval, timeout time.Duration) *Refresher {
	return &Refresher{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		cron:     cron.New(),
	}
}

func (r *Refresher) Start() error {
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, func() {
		r.RefreshAll(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule room refresh: %w", err)
	}
	r.cron.Start()
	slog.Info("room_refresher_started", slog.Duration("interval", r.interval))
	return nil
}

// Stop halts scheduling and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshAll loads every open view once. Two loads of the same view may
// overlap with a viewer-triggered load; the view's sequence guard settles it.
func (r *Refresher) RefreshAll(ctx context.Context) int {
	views := r.registry.Views()
	for _, v := range views {
		loadCtx, cancel := context.WithTimeout(ctx, r.timeout)
		v.Load(loadCtx)
		cancel()
	}
	return len(views)
}
