package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/opensource-finance/shrike/internal/domain"
)

var (
	ErrBusClosed      = errors.New("event bus is closed")
	ErrTenantRequired = errors.New("tenant id is required")
)

// ChannelBus delivers events over in-process Go channels. It is the
// default transport for single-node deployments: the API, the worker
// and any embedded consumers share one bus instance.
type ChannelBus struct {
	mu            sync.RWMutex
	bufferSize    int
	subscriptions map[string][]*channelSubscription
	closed        bool
}

type channelSubscription struct {
	tenantID string
	topic    string
	handler  domain.EventHandler
	events   chan *domain.Event
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewChannelBus creates an in-process bus. bufferSize caps the queue
// per subscription; events beyond it are dropped rather than blocking
// the publisher.
func NewChannelBus(bufferSize int) *ChannelBus {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &ChannelBus{
		bufferSize:    bufferSize,
		subscriptions: make(map[string][]*channelSubscription),
	}
}

// Publish stamps the event and fans it out to the tenant's
// subscribers for the topic. Delivery is non-blocking: a subscriber
// with a full queue misses the event.
func (b *ChannelBus) Publish(ctx context.Context, tenantID, topic string, event *domain.Event) error {
	if tenantID == "" {
		return ErrTenantRequired
	}
	if event == nil {
		return domain.ErrNoPayload
	}

	stamp(event, tenantID, topic)

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	subs := b.subscriptions[subscriptionKey(tenantID, topic)]
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.events <- event:
		default:
		}
	}
	return nil
}

// Subscribe registers a handler for a tenant's topic. The handler
// runs on a dedicated goroutine until Unsubscribe or Close.
func (b *ChannelBus) Subscribe(ctx context.Context, tenantID, topic string, handler domain.EventHandler) (domain.Subscription, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &channelSubscription{
		tenantID: tenantID,
		topic:    topic,
		handler:  handler,
		events:   make(chan *domain.Event, b.bufferSize),
		ctx:      subCtx,
		cancel:   cancel,
	}
	go sub.run()

	key := subscriptionKey(tenantID, topic)
	b.subscriptions[key] = append(b.subscriptions[key], sub)

	return sub, nil
}

func (s *channelSubscription) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event := <-s.events:
			if event != nil {
				_ = s.handler(s.ctx, event)
			}
		}
	}
}

// Ping reports whether the bus is open.
func (b *ChannelBus) Ping(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	return nil
}

// Close stops every subscription and rejects further publishes.
func (b *ChannelBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscriptions {
		for _, sub := range subs {
			sub.cancel()
			close(sub.events)
		}
	}
	b.subscriptions = make(map[string][]*channelSubscription)
	return nil
}

func subscriptionKey(tenantID, topic string) string {
	return tenantID + ":" + topic
}

func (s *channelSubscription) Unsubscribe() error {
	s.cancel()
	return nil
}

func (s *channelSubscription) Topic() string {
	return s.topic
}
