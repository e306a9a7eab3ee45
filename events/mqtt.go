// Package events publishes committed room configurations to an MQTT broker so
// room controllers can pick up the new setpoints.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"smartoffice-console/metrics"
	"smartoffice-console/models"
	"smartoffice-console/roomconfig"
)

type Publisher struct {
	topicRoot string
	opts      *paho.ClientOptions
	client    paho.Client
}

func NewPublisher(brokerURL, clientID, topicRoot string) *Publisher {
	opts := paho.NewClientOptions().AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)

	return &Publisher{
		topicRoot: topicRoot,
		opts:      opts,
	}
}

func (p *Publisher) Connect() error {
	p.client = paho.NewClient(p.opts)
	token := p.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect error: %w", err)
	}
	return nil
}

func (p *Publisher) Disconnect() {
	if p.client == nil {
		return
	}
	p.client.Disconnect(250)
}

// Topic returns the scoped topic of a relative one.
func (p *Publisher) Topic(topic string) (string, error) {
	if len(topic) == 0 {
		return "", fmt.Errorf("topic is empty")
	}
	if topic[0] == '/' {
		return "", fmt.Errorf("expected relative topic (cannot begin with slash)")
	}
	return fmt.Sprintf("%s/%s", p.topicRoot, topic), nil
}

func (p *Publisher) Publish(topic string, payload any, retained bool) error {
	if p.client == nil {
		return fmt.Errorf("client not connected")
	}
	scopedTopic, err := p.Topic(topic)
	if err != nil {
		return err
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to encode payload: %w", err)
	}

	token := p.client.Publish(scopedTopic, 1, retained, payloadBytes)
	go func() {
		token.Wait()
		err := token.Error()
		metrics.ActivityEvent("mqtt", err == nil)
		if err != nil {
			slog.Error("mqtt_publish_failed", slog.String("topic", scopedTopic), slog.String("error", err.Error()))
		}
	}()
	return nil
}

// ConfigMessage is the retained payload of a room's config topic.
type ConfigMessage struct {
	Config      models.RoomConfiguration `json:"config"`
	Changes     []roomconfig.Change      `json:"changes"`
	CommittedBy string                   `json:"committedBy,omitempty"`
	CommittedAt string                   `json:"committedAt"`
}

func ConfigTopic(officeID, roomID string) string {
	return fmt.Sprintf("offices/%s/rooms/%s/config", officeID, roomID)
}

// ConfigCommitted publishes the committed configuration as a retained message.
func (p *Publisher) ConfigCommitted(ctx context.Context, c roomconfig.Commit) {
	msg := ConfigMessage{
		Config:      c.After,
		Changes:     c.Changes,
		CommittedBy: c.User,
		CommittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := p.Publish(ConfigTopic(c.OfficeID, c.RoomID), msg, true); err != nil {
		metrics.ActivityEvent("mqtt", false)
		slog.Warn("mqtt_publish_skipped", slog.String("room_id", c.RoomID), slog.String("error", err.Error()))
	}
}
