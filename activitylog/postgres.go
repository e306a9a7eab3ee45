package activitylog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartoffice-console/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity_log (
	id          BIGSERIAL PRIMARY KEY,
	occurred_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	office_id   TEXT NOT NULL DEFAULT '',
	room        TEXT NOT NULL,
	action      TEXT NOT NULL,
	device      TEXT NOT NULL DEFAULT '',
	old_value   TEXT NOT NULL DEFAULT '',
	new_value   TEXT NOT NULL DEFAULT '',
	user_name   TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL DEFAULT ''
)`

// PGStore keeps the activity log in PostgreSQL.
type PGStore struct {
	db       *pgxpool.Pool
	officeID string
	scoped   bool
	limit    int
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db, limit: 1000}
}

// ForOffice returns a store that lists only the entries of officeID. An empty
// officeID matches no entries.
func (s *PGStore) ForOffice(officeID string) *PGStore {
	c := *s
	c.officeID = officeID
	c.scoped = true
	return &c
}

func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

func (s *PGStore) List(ctx context.Context) ([]models.ActivityLogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, occurred_at, room, action, device, old_value, new_value, user_name, mode
		FROM activity_log
		WHERE (NOT $3::boolean OR office_id = $1)
		ORDER BY occurred_at DESC
		LIMIT $2
	`, s.officeID, s.limit, s.scoped)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.ActivityLogEntry{}
	for rows.Next() {
		var (
			id int64
			at time.Time
			e  models.ActivityLogEntry
		)
		if err := rows.Scan(&id, &at, &e.Room, &e.Action, &e.Device, &e.OldValue, &e.NewValue, &e.User, &e.Mode); err != nil {
			return nil, err
		}
		e.ID = fmt.Sprintf("%d", id)
		e.Timestamp = at.UTC().Format(time.RFC3339)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Append inserts entries in one batch.
func (s *PGStore) Append(ctx context.Context, officeID string, entries []models.ActivityLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		at, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			at = time.Now().UTC()
		}
		batch.Queue(`
			INSERT INTO activity_log (occurred_at, office_id, room, action, device, old_value, new_value, user_name, mode)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, at, officeID, e.Room, e.Action, e.Device, e.OldValue, e.NewValue, e.User, e.Mode)
	}
	return s.db.SendBatch(ctx, batch).Close()
}
