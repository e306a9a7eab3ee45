package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"smartoffice-console/models"
)

// sensorPoint is one raw reading. Values carry units ("25.68 °C", "16.6 %")
// and the timestamp is Unix seconds, sometimes sent as a string.
type sensorPoint struct {
	Timestamp   any `mapstructure:"timestamp"`
	Temperature any `mapstructure:"temperature"`
	Humidity    any `mapstructure:"humidity"`
	Light       any `mapstructure:"light"`
}

var leadingNumber = regexp.MustCompile(`-?[\d.]+`)

// readingValue extracts the number from a reading. Missing or unparsable
// values read as 0.
func readingValue(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	m := leadingNumber.FindString(fmt.Sprint(v))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// GetSensorData returns the last hours of readings for a room, oldest first
// as sent. The endpoint answers either with a bare array or {"data": [...]}.
func (c *Client) GetSensorData(ctx context.Context, token, roomID string, hours int) ([]models.SensorReading, error) {
	q := url.Values{"roomId": {roomID}, "hours": {strconv.Itoa(hours)}}

	var raw json.RawMessage
	if err := c.do(ctx, token, http.MethodGet, "/sensor-data", q, nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	var points []map[string]any
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("decode sensor data: %w", err)
		}
	} else {
		var body struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode sensor data: %w", err)
		}
		points = body.Data
	}

	out := make([]models.SensorReading, 0, len(points))
	for _, p := range points {
		var sp sensorPoint
		if err := weakDecode(p, &sp); err != nil {
			return nil, fmt.Errorf("decode sensor point: %w", err)
		}
		out = append(out, models.SensorReading{
			Timestamp:   time.Unix(int64(readingValue(sp.Timestamp)), 0).UTC(),
			Temperature: readingValue(sp.Temperature),
			Humidity:    readingValue(sp.Humidity),
			Light:       readingValue(sp.Light),
		})
	}
	return out, nil
}
