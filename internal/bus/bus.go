// Package bus provides the event transports behind domain.EventBus:
// an in-process channel bus for single-node deployments and a NATS
// bus for distributed ones.
package bus

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opensource-finance/shrike/internal/domain"
)

// New creates an event bus from configuration. An empty type selects
// the in-process channel bus.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "", "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}

// stamp fills the envelope fields the transport owns. Payload fields
// are the producer's responsibility and are left alone.
func stamp(event *domain.Event, tenantID, topic string) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.TenantID = tenantID
	event.Topic = topic
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
}
