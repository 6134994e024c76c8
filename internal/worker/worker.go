// Package worker consumes screening requests from the event bus and
// publishes the outcomes, so callers can screen asynchronously.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/screening"
)

// GlobalTenant is the subscription tenant used when no explicit
// tenant list is configured. Single-node deployments publish requests
// under it.
const GlobalTenant = "_global"

// Worker screens batches delivered on the requested topic and emits
// completed and alert events per result.
type Worker struct {
	bus    domain.EventBus
	repo   domain.Repository
	engine *screening.Engine

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs lists the tenants to consume. Empty subscribes the
	// global tenant only.
	TenantIDs []string
}

// NewWorker creates an async screening worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, engine *screening.Engine) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		repo:   repo,
		engine: engine,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the requested topic for the configured tenants.
func (w *Worker) Start(cfg Config) error {
	tenants := cfg.TenantIDs
	if len(tenants) == 0 {
		tenants = []string{GlobalTenant}
	}

	for _, tenantID := range tenants {
		sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicScreeningRequested, w.handleEvent)
		if err != nil {
			slog.Error("worker subscription failed",
				"tenantId", tenantID,
				"error", err,
			)
			continue
		}
		w.subscriptions = append(w.subscriptions, sub)
	}

	slog.Info("workers started", "tenants", len(tenants))
	return nil
}

// handleEvent screens one requested batch. Events without a request
// payload are logged and dropped.
func (w *Worker) handleEvent(ctx context.Context, event *domain.Event) error {
	if event.Request == nil {
		slog.Warn("screening request without payload",
			"eventId", event.ID,
			"tenantId", event.TenantID,
		)
		return nil
	}

	start := time.Now()
	req := event.Request

	tenantID := event.TenantID
	if tenantID == "" {
		tenantID = GlobalTenant
	}
	traceID := event.TraceID
	if traceID == "" {
		traceID = event.ID
	}

	slog.Debug("processing screening request",
		"tenantId", tenantID,
		"records", len(req.Records),
		"traceId", traceID,
	)

	batch, err := w.engine.ScreenBatch(ctx, tenantID, req.Records, req.Options)
	if err != nil {
		slog.Error("screening failed",
			"tenantId", tenantID,
			"traceId", traceID,
			"error", err,
		)
		return err
	}

	for _, result := range batch.Results {
		if w.repo != nil {
			if err := w.repo.SaveResult(ctx, tenantID, result); err != nil {
				slog.Error("save screening result failed",
					"resultId", result.ID,
					"error", err,
				)
			}
		}

		w.publishOutcome(ctx, tenantID, traceID, domain.TopicScreeningCompleted, result)
		if result.Status != domain.StatusClear {
			w.publishOutcome(ctx, tenantID, traceID, domain.TopicScreeningAlert, result)
		}
	}

	slog.Info("screening request processed",
		"tenantId", tenantID,
		"records", len(req.Records),
		"demo", batch.IsDemoData,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return nil
}

func (w *Worker) publishOutcome(ctx context.Context, tenantID, traceID, topic string, result *domain.ScreeningResult) {
	event := &domain.Event{
		TraceID:   traceID,
		Screening: domain.NewScreeningOutcome(result),
	}
	if err := w.bus.Publish(ctx, tenantID, topic, event); err != nil {
		slog.Error("publish outcome failed",
			"topic", topic,
			"resultId", result.ID,
			"error", err,
		)
	}
}

// Stop cancels all subscriptions and waits for in-flight work.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("unsubscribe failed",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats describes the worker's live subscriptions.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
