package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Connect establishes a NATS connection. An empty URL disables event
// publishing and returns a nil connection without error.
func Connect(url string, log zerolog.Logger) (*nats.Conn, error) {
	if url == "" {
		log.Info().Msg("NATS URL not configured, event publishing disabled")
		return nil, nil
	}

	nc, err := nats.Connect(url,
		nats.Name("player-wallet-service"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	log.Info().Str("url", url).Msg("NATS connection established")
	return nc, nil
}

// HealthCheck implements ports.HealthChecker for NATS.
type HealthCheck struct {
	conn *nats.Conn
}

// NewHealthCheck creates a NATS health checker.
func NewHealthCheck(conn *nats.Conn) *HealthCheck {
	return &HealthCheck{conn: conn}
}

// Ping reports whether the NATS connection is alive.
func (h *HealthCheck) Ping(_ context.Context) error {
	if !h.conn.IsConnected() {
		return fmt.Errorf("nats: not connected (status %s)", h.conn.Status())
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "nats"
}
