// Package activitylog filters and exports the audit trail of room changes.
package activitylog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"smartoffice-console/models"
)

// All disables a string filter.
const All = "all"

// Source lists activity log entries.
type Source interface {
	List(ctx context.Context) ([]models.ActivityLogEntry, error)
}

// Filter selects entries. Empty or "all" string fields match everything.
// DateFrom and DateTo are YYYY-MM-DD bounds compared against the date prefix
// of the entry timestamp, both inclusive.
type Filter struct {
	Room     string `json:"room"`
	Action   string `json:"action"`
	User     string `json:"user"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

func matches(want, got string) bool {
	return want == "" || want == All || want == got
}

func datePrefix(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func (f Filter) Match(e models.ActivityLogEntry) bool {
	if !matches(f.Room, e.Room) || !matches(f.Action, e.Action) || !matches(f.User, e.User) {
		return false
	}
	day := datePrefix(e.Timestamp)
	if f.DateFrom != "" && day < f.DateFrom {
		return false
	}
	if f.DateTo != "" && day > f.DateTo {
		return false
	}
	return true
}

func (f Filter) Apply(entries []models.ActivityLogEntry) []models.ActivityLogEntry {
	out := make([]models.ActivityLogEntry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Facets are the distinct values offered by the filter drop-downs.
type Facets struct {
	Rooms   []string `json:"rooms"`
	Actions []string `json:"actions"`
	Users   []string `json:"users"`
}

func distinct(entries []models.ActivityLogEntry, pick func(models.ActivityLogEntry) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range entries {
		v := pick(e)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func FacetsOf(entries []models.ActivityLogEntry) Facets {
	return Facets{
		Rooms:   distinct(entries, func(e models.ActivityLogEntry) string { return e.Room }),
		Actions: distinct(entries, func(e models.ActivityLogEntry) string { return e.Action }),
		Users:   distinct(entries, func(e models.ActivityLogEntry) string { return e.User }),
	}
}

var csvHeader = []string{"Timestamp", "Room", "Action", "Device", "Old Value", "New Value", "User", "Mode"}

// WriteCSV writes entries with a header row.
func WriteCSV(w io.Writer, entries []models.ActivityLogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{e.Timestamp, e.Room, e.Action, e.Device, e.OldValue, e.NewValue, e.User, e.Mode}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName is the download name of an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("activity-logs-%s.csv", t.Format("2006-01-02"))
}

// ValidDate reports whether s is empty or a YYYY-MM-DD date.
func ValidDate(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
