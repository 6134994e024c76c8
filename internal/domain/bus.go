package domain

import (
	"context"
	"errors"
	"time"
)

// Topics for the screening pipeline. Every event on the bus belongs
// to exactly one of these.
const (
	TopicScreeningRequested = "shrike.screening.requested"
	TopicScreeningCompleted = "shrike.screening.completed"
	TopicScreeningAlert     = "shrike.screening.alert"
	TopicDispositionUpdated = "shrike.disposition.updated"
)

// ErrNoPayload means an event arrived without any payload set.
var ErrNoPayload = errors.New("event carries no payload")

// Event is the envelope for every message on the bus. The transport
// stamps ID, TenantID, Topic and Timestamp on publish; producers fill
// exactly one payload field matching the topic.
type Event struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Topic     string    `json:"topic"`
	TraceID   string    `json:"traceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Request     *ScreeningRequestedEvent `json:"request,omitempty"`
	Screening   *ScreeningOutcomeEvent   `json:"screening,omitempty"`
	Disposition *DispositionUpdatedEvent `json:"disposition,omitempty"`
}

// ScreeningRequestedEvent asks a worker to screen a batch of records.
type ScreeningRequestedEvent struct {
	Records []ScreeningRecord `json:"records"`
	Options *ScreeningOptions `json:"options,omitempty"`
}

// ScreeningOutcomeEvent summarizes one screening result. It rides on
// both the completed and alert topics.
type ScreeningOutcomeEvent struct {
	ResultID   string          `json:"resultId"`
	RecordID   string          `json:"recordId,omitempty"`
	RecordName string          `json:"recordName"`
	Status     ScreeningStatus `json:"status"`
	Matches    int             `json:"matches"`
	TopScore   float64         `json:"topScore,omitempty"`
	IsDemoData bool            `json:"isDemoData,omitempty"`
}

// NewScreeningOutcome builds the outcome payload for a result.
func NewScreeningOutcome(r *ScreeningResult) *ScreeningOutcomeEvent {
	out := &ScreeningOutcomeEvent{
		ResultID:   r.ID,
		RecordID:   r.RecordID,
		RecordName: r.RecordName,
		Status:     r.Status,
		Matches:    len(r.Matches),
		IsDemoData: r.IsDemoData,
	}
	if len(r.Matches) > 0 {
		out.TopScore = r.Matches[0].Score
	}
	return out
}

// DispositionUpdatedEvent records an analyst decision on a match.
type DispositionUpdatedEvent struct {
	ResultID    string          `json:"resultId"`
	Seq         int             `json:"seq"`
	Disposition Disposition     `json:"disposition"`
	Status      ScreeningStatus `json:"status"`
	Note        string          `json:"note,omitempty"`
}

// EventHandler processes one delivered event.
type EventHandler func(ctx context.Context, event *Event) error

// EventBus moves screening events between the API, workers and any
// external consumers. Every operation is scoped to a tenant.
type EventBus interface {
	// Publish stamps and delivers an event to a tenant's topic.
	Publish(ctx context.Context, tenantID, topic string, event *Event) error

	// Subscribe registers a handler for a tenant's topic.
	Subscribe(ctx context.Context, tenantID, topic string, handler EventHandler) (Subscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// Subscription is an active topic subscription.
type Subscription interface {
	Unsubscribe() error
	Topic() string
}

// EventBusConfig selects and tunes the bus transport.
type EventBusConfig struct {
	// Type is "channel" (in-process) or "nats". Empty means channel.
	Type string

	// Channel settings
	ChannelBufferSize int

	// NATS settings
	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds
}
