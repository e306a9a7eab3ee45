package activitylog

import (
	"context"
	"log/slog"
	"time"

	"smartoffice-console/metrics"
	"smartoffice-console/models"
	"smartoffice-console/roomconfig"
)

const ActionConfigUpdate = "config_update"

// Appender stores new entries.
type Appender interface {
	Append(ctx context.Context, officeID string, entries []models.ActivityLogEntry) error
}

// Recorder turns committed room configurations into activity log entries,
// one per changed field.
type Recorder struct {
	store Appender
	now   func() time.Time
}

func NewRecorder(store Appender) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

// Entries builds the log entries of a commit.
func Entries(c roomconfig.Commit, at time.Time) []models.ActivityLogEntry {
	ts := at.UTC().Format(time.RFC3339)
	entries := make([]models.ActivityLogEntry, 0, len(c.Changes))
	for _, ch := range c.Changes {
		device := "schedule"
		mode := ""
		if ch.Channel != "" {
			device = string(ch.Channel)
			mode = string(c.After.Channel(ch.Channel).Mode)
		}
		entries = append(entries, models.ActivityLogEntry{
			Timestamp: ts,
			Room:      c.RoomID,
			Action:    ActionConfigUpdate,
			Device:    device + "." + string(ch.Field),
			OldValue:  ch.Old,
			NewValue:  ch.New,
			User:      c.User,
			Mode:      mode,
		})
	}
	return entries
}

func (r *Recorder) ConfigCommitted(ctx context.Context, c roomconfig.Commit) {
	entries := Entries(c, r.now())
	if len(entries) == 0 {
		return
	}
	err := r.store.Append(ctx, c.OfficeID, entries)
	metrics.ActivityEvent("postgres", err == nil)
	if err != nil {
		slog.Error("activity_log_append_failed",
			slog.String("room_id", c.RoomID),
			slog.String("error", err.Error()),
		)
	}
}
