package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NatsConfig holds the NATS notification sink settings.
type NatsConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// DefaultNatsConfig returns the default NATS sink settings.
func DefaultNatsConfig() NatsConfig {
	return NatsConfig{
		URL:     nats.DefaultURL,
		Subject: "refetch.notifications",
	}
}

// NatsNotifier publishes events as JSON to a NATS subject so external
// presenters can fan them out.
type NatsNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNatsNotifier connects to NATS and returns a publishing sink.
func NewNatsNotifier(cfg NatsConfig) (*NatsNotifier, error) {
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return &NatsNotifier{conn: conn, subject: cfg.Subject}, nil
}

// Notify implements Notifier. Publish failures are logged, never
// propagated: notification delivery must not disturb the loading path.
func (n *NatsNotifier) Notify(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode notification", "error", err)
		return
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		slog.Error("Failed to publish notification", "subject", n.subject, "error", err)
	}
}

// Close drains the underlying connection.
func (n *NatsNotifier) Close() {
	n.conn.Close()
}
