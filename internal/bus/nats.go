package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/opensource-finance/shrike/internal/domain"
)

// NATSBus delivers events over NATS for multi-node deployments.
// Events are JSON envelopes on per-tenant subjects, so tenant
// isolation holds at the subject level.
type NATSBus struct {
	mu            sync.RWMutex
	conn          *nats.Conn
	subscriptions []*natsSubscription
	config        domain.EventBusConfig
}

type natsSubscription struct {
	topic string
	sub   *nats.Subscription
}

// NewNATSBus connects to NATS with reconnect handling and returns the
// bus. Connection attempts retry up to the configured reconnect cap.
func NewNATSBus(cfg domain.EventBusConfig) (*NATSBus, error) {
	if cfg.NATSUrl == "" {
		cfg.NATSUrl = nats.DefaultURL
	}
	if cfg.NATSMaxReconnects == 0 {
		cfg.NATSMaxReconnects = 10
	}
	if cfg.NATSReconnectWait == 0 {
		cfg.NATSReconnectWait = 5
	}

	conn, err := connectWithRetry(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("nats connected",
		"url", conn.ConnectedUrl(),
		"serverId", conn.ConnectedServerId(),
	)

	return &NATSBus{
		conn:   conn,
		config: cfg,
	}, nil
}

func connectWithRetry(cfg domain.EventBusConfig) (*nats.Conn, error) {
	opts := natsOptions(cfg)
	wait := time.Duration(cfg.NATSReconnectWait) * time.Second

	var conn *nats.Conn
	var err error
	for i := 0; i < cfg.NATSMaxReconnects; i++ {
		conn, err = nats.Connect(cfg.NATSUrl, opts...)
		if err == nil {
			return conn, nil
		}
		slog.Warn("nats connection attempt failed",
			"attempt", i+1,
			"maxAttempts", cfg.NATSMaxReconnects,
			"error", err,
		)
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("connect to nats after %d attempts: %w", cfg.NATSMaxReconnects, err)
}

func natsOptions(cfg domain.EventBusConfig) []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.NATSMaxReconnects),
		nats.ReconnectWait(time.Duration(cfg.NATSReconnectWait) * time.Second),
		nats.ReconnectBufSize(8 * 1024 * 1024),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("nats disconnected",
				"error", err,
				"willReconnect", !nc.IsClosed(),
			)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("nats connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			slog.Error("nats error",
				"error", err,
				"subject", sub.Subject,
			)
		}),
	}
	if cfg.NATSToken != "" {
		opts = append(opts, nats.Token(cfg.NATSToken))
	}
	return opts
}

// Publish stamps the event and sends its JSON envelope to the
// tenant's subject.
func (b *NATSBus) Publish(ctx context.Context, tenantID, topic string, event *domain.Event) error {
	if tenantID == "" {
		return ErrTenantRequired
	}
	if event == nil {
		return domain.ErrNoPayload
	}

	stamp(event, tenantID, topic)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.conn.Publish(subject(tenantID, topic), data)
}

// Subscribe registers a handler for a tenant's topic. Envelopes that
// fail to decode are logged and dropped rather than crashing the
// subscription.
func (b *NATSBus) Subscribe(ctx context.Context, tenantID, topic string, handler domain.EventHandler) (domain.Subscription, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	subj := subject(tenantID, topic)
	natsSub, err := b.conn.Subscribe(subj, func(m *nats.Msg) {
		var event domain.Event
		if err := json.Unmarshal(m.Data, &event); err != nil {
			slog.Error("malformed event envelope",
				"subject", m.Subject,
				"error", err,
			)
			return
		}
		if err := handler(ctx, &event); err != nil {
			slog.Error("event handler failed",
				"subject", m.Subject,
				"eventId", event.ID,
				"error", err,
			)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", subj, err)
	}

	sub := &natsSubscription{topic: topic, sub: natsSub}

	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, sub)
	b.mu.Unlock()

	return sub, nil
}

// Ping verifies the connection by flushing pending writes.
func (b *NATSBus) Ping(ctx context.Context) error {
	if !b.conn.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return b.conn.FlushWithContext(ctx)
}

// Close drops all subscriptions and closes the connection.
func (b *NATSBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscriptions {
		_ = sub.sub.Unsubscribe()
	}
	b.subscriptions = nil

	b.conn.Close()
	return nil
}

// Stats exposes NATS connection statistics.
func (b *NATSBus) Stats() nats.Statistics {
	return b.conn.Stats()
}

func subject(tenantID, topic string) string {
	return fmt.Sprintf("shrike.%s.%s", tenantID, topic)
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}

func (s *natsSubscription) Topic() string {
	return s.topic
}
