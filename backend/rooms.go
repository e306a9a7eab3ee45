package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"

	"smartoffice-console/models"
)

// roomConfigPayload is the flat record stored by the room-config lambdas.
// Numeric fields are sometimes stored as strings, so it is decoded weakly.
type roomConfigPayload struct {
	RoomID             string   `mapstructure:"roomId"`
	OfficeID           string   `mapstructure:"officeId"`
	TemperatureMode    string   `mapstructure:"temperatureMode"`
	HumidityMode       string   `mapstructure:"humidityMode"`
	LightMode          string   `mapstructure:"lightMode"`
	TargetTemperature  *float64 `mapstructure:"targetTemperature"`
	TargetHumidity     *float64 `mapstructure:"targetHumidity"`
	TargetLight        *float64 `mapstructure:"targetLight"`
	AutoOnTime         string   `mapstructure:"autoOnTime"`
	AutoOffTime        string   `mapstructure:"autoOffTime"`
	AutoControl        string   `mapstructure:"autoControl"`
	LastUpdate         string   `mapstructure:"lastUpdate"`
	ThingName          string   `mapstructure:"thingName"`
	ConnectionStatus   string   `mapstructure:"connectionStatus"`
	DeviceStatus       string   `mapstructure:"deviceStatus"`
	CurrentTemperature *float64 `mapstructure:"currentTemperature"`
	CurrentHumidity    *float64 `mapstructure:"currentHumidity"`
	CurrentLight       *float64 `mapstructure:"currentLight"`
}

func weakDecode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func channelMode(raw string) models.Mode {
	m := models.Mode(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return models.ModeAuto
	}
	return m
}

func targetOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DecodeRoomConfig converts a backend record into a configuration and the
// display-only room status. Absent fields take the fallback value.
func DecodeRoomConfig(raw map[string]any, officeID, roomID string) (models.RoomConfiguration, models.RoomStatus, error) {
	var p roomConfigPayload
	if err := weakDecode(raw, &p); err != nil {
		return models.RoomConfiguration{}, models.RoomStatus{}, fmt.Errorf("decode room config: %w", err)
	}

	cfg := models.RoomConfiguration{
		RoomID:   stringOr(p.RoomID, roomID),
		OfficeID: stringOr(p.OfficeID, officeID),
		Temperature: models.ChannelConfig{
			Mode:   channelMode(p.TemperatureMode),
			Target: targetOr(p.TargetTemperature, models.DefaultTargetTemperature),
		},
		Humidity: models.ChannelConfig{
			Mode:   channelMode(p.HumidityMode),
			Target: targetOr(p.TargetHumidity, models.DefaultTargetHumidity),
		},
		Light: models.ChannelConfig{
			Mode:   channelMode(p.LightMode),
			Target: targetOr(p.TargetLight, models.DefaultTargetLight),
		},
		AutoOnTime:  stringOr(p.AutoOnTime, models.DefaultAutoOnTime),
		AutoOffTime: stringOr(p.AutoOffTime, models.DefaultAutoOffTime),
		AutoControl: stringOr(strings.ToUpper(p.AutoControl), models.AutoControlOn),
		LastUpdate:  p.LastUpdate,
	}
	status := models.RoomStatus{
		ThingName:          p.ThingName,
		ConnectionStatus:   p.ConnectionStatus,
		DeviceStatus:       p.DeviceStatus,
		CurrentTemperature: p.CurrentTemperature,
		CurrentHumidity:    p.CurrentHumidity,
		CurrentLight:       p.CurrentLight,
	}
	return cfg, status, nil
}

func roomQuery(officeID, roomID string) url.Values {
	return url.Values{"officeId": {officeID}, "roomId": {roomID}}
}

func (c *Client) GetRoomConfig(ctx context.Context, token, officeID, roomID string) (models.RoomConfiguration, models.RoomStatus, error) {
	var raw map[string]any
	if err := c.do(ctx, token, http.MethodGet, "/room-config", roomQuery(officeID, roomID), nil, &raw); err != nil {
		return models.RoomConfiguration{}, models.RoomStatus{}, err
	}
	return DecodeRoomConfig(raw, officeID, roomID)
}

// UpdateRoomConfig persists a full replace of the room configuration.
func (c *Client) UpdateRoomConfig(ctx context.Context, token, officeID, roomID string, update models.RoomConfigUpdate) error {
	body := struct {
		OfficeID string                  `json:"officeId"`
		RoomID   string                  `json:"roomId"`
		Updates  models.RoomConfigUpdate `json:"updates"`
	}{officeID, roomID, update}
	return c.do(ctx, token, http.MethodPost, "/room-config", nil, body, nil)
}

func (c *Client) DeleteRoom(ctx context.Context, token, officeID, roomID string) error {
	return c.do(ctx, token, http.MethodDelete, "/room-config", roomQuery(officeID, roomID), nil, nil)
}

// CreateRoom registers a room in an office and provisions its device
// identity. A room that already exists is a 409 StatusError.
func (c *Client) CreateRoom(ctx context.Context, token, officeID, roomID string) (*models.RoomProvisioning, error) {
	body := map[string]string{"officeId": officeID, "roomId": roomID}
	var raw map[string]any
	if err := c.do(ctx, token, http.MethodPost, "/rooms", nil, body, &raw); err != nil {
		return nil, err
	}

	var p struct {
		Message        string `mapstructure:"message"`
		ThingName      string `mapstructure:"thingName"`
		CertificatePem string `mapstructure:"certificatePem"`
		PrivateKey     string `mapstructure:"privateKey"`
		RootCA         string `mapstructure:"rootCA"`
	}
	if err := weakDecode(raw, &p); err != nil {
		return nil, fmt.Errorf("decode room provisioning: %w", err)
	}
	return &models.RoomProvisioning{
		Message:        p.Message,
		OfficeID:       officeID,
		RoomID:         roomID,
		ThingName:      p.ThingName,
		CertificatePem: p.CertificatePem,
		PrivateKey:     p.PrivateKey,
		RootCA:         p.RootCA,
	}, nil
}

func (c *Client) ListRooms(ctx context.Context, token, officeID string) ([]models.Room, error) {
	var body struct {
		Rooms []map[string]any `json:"rooms"`
	}
	q := url.Values{"officeId": {officeID}}
	if err := c.do(ctx, token, http.MethodGet, "/rooms", q, nil, &body); err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(body.Rooms))
	for _, raw := range body.Rooms {
		var room models.Room
		if err := weakDecode(raw, &room); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
