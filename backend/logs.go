package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"smartoffice-console/models"
)

// ListLogs returns the activity log. The endpoint answers either with a bare
// array or with {"logs": [...]}.
func (c *Client) ListLogs(ctx context.Context, token string) ([]models.ActivityLogEntry, error) {
	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, "/logs", nil, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	var entries []models.ActivityLogEntry
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode logs: %w", err)
		}
		return entries, nil
	}

	var body struct {
		Logs []models.ActivityLogEntry `json:"logs"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}
	return body.Logs, nil
}
