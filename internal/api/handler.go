package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/policy"
	"github.com/opensource-finance/shrike/internal/repository"
	"github.com/opensource-finance/shrike/internal/screening"
	"github.com/opensource-finance/shrike/internal/sources"
)

// GlobalTenantID is used for policies that apply to all tenants.
const GlobalTenantID = "*"

// Handler holds dependencies for API handlers.
type Handler struct {
	repo     domain.Repository
	cache    domain.Cache
	bus      domain.EventBus
	engine   *screening.Engine
	policies *policy.Engine
	cfg      domain.ScreeningConfig
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *screening.Engine, policies *policy.Engine, cfg domain.ScreeningConfig, version string) *Handler {
	return &Handler{
		repo:     repo,
		cache:    cache,
		bus:      bus,
		engine:   engine,
		policies: policies,
		cfg:      cfg,
		version:  version,
	}
}

// ScreenResponse is the response for POST /screen.
type ScreenResponse struct {
	Results    []*domain.ScreeningResult `json:"results"`
	IsDemoData bool                      `json:"isDemoData"`
	Warning    string                    `json:"warning,omitempty"`
	Metadata   struct {
		TraceID string `json:"traceId"`
		TotalMs int64  `json:"totalMs"`
		Version string `json:"version"`
	} `json:"metadata"`
}

// Screen handles POST /screen requests: batch screening.
func (h *Handler) Screen(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	var req domain.ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if len(req.Records) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "records is required",
		})
		return
	}
	if h.cfg.MaxBatchSize > 0 && len(req.Records) > h.cfg.MaxBatchSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
			"error": "batch exceeds maximum of " + strconv.Itoa(h.cfg.MaxBatchSize) + " records",
		})
		return
	}

	batch, err := h.engine.ScreenBatch(ctx, tenantID, req.Records, req.Options)
	if err != nil {
		h.writeScreeningError(w, err)
		return
	}

	h.persistAndPublish(r, tenantID, traceID, batch.Results)

	resp := ScreenResponse{
		Results:    batch.Results,
		IsDemoData: batch.IsDemoData,
		Warning:    batch.Warning,
	}
	resp.Metadata.TraceID = traceID
	resp.Metadata.TotalMs = time.Since(start).Milliseconds()
	resp.Metadata.Version = h.version

	writeJSON(w, http.StatusOK, resp)
}

// NameScreenResponse is the response for POST /screen/name.
type NameScreenResponse struct {
	Result     *domain.ScreeningResult `json:"result"`
	IsDemoData bool                    `json:"isDemoData"`
	Warning    string                  `json:"warning,omitempty"`
	Metadata   struct {
		TraceID string `json:"traceId"`
		TotalMs int64  `json:"totalMs"`
		Version string `json:"version"`
	} `json:"metadata"`
}

// ScreenName handles POST /screen/name requests: single-name screening.
func (h *Handler) ScreenName(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	var req domain.NameScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name is required",
		})
		return
	}

	single, err := h.engine.ScreenName(ctx, tenantID, req.ToRecord(), req.Options)
	if err != nil {
		h.writeScreeningError(w, err)
		return
	}

	h.persistAndPublish(r, tenantID, traceID, []*domain.ScreeningResult{single.Result})

	resp := NameScreenResponse{
		Result:     single.Result,
		IsDemoData: single.IsDemoData,
		Warning:    single.Warning,
	}
	resp.Metadata.TraceID = traceID
	resp.Metadata.TotalMs = time.Since(start).Milliseconds()
	resp.Metadata.Version = h.version

	writeJSON(w, http.StatusOK, resp)
}

// persistAndPublish saves each result and emits pipeline events.
// Persistence and event failures are logged, never surfaced: the
// screening outcome has already been computed and belongs to the caller.
func (h *Handler) persistAndPublish(r *http.Request, tenantID, traceID string, results []*domain.ScreeningResult) {
	ctx := r.Context()

	for _, result := range results {
		if h.repo != nil {
			if err := h.repo.SaveResult(ctx, tenantID, result); err != nil {
				slog.Error("failed to save screening result", "id", result.ID, "error", err)
			}
		}

		if h.bus == nil {
			continue
		}

		completed := &domain.Event{
			TraceID:   traceID,
			Screening: domain.NewScreeningOutcome(result),
		}
		if err := h.bus.Publish(ctx, tenantID, domain.TopicScreeningCompleted, completed); err != nil {
			slog.Error("failed to publish screening event", "id", result.ID, "error", err)
		}

		if result.Status != domain.StatusClear {
			alert := &domain.Event{
				TraceID:   traceID,
				Screening: domain.NewScreeningOutcome(result),
			}
			if err := h.bus.Publish(ctx, tenantID, domain.TopicScreeningAlert, alert); err != nil {
				slog.Error("failed to publish alert event", "id", result.ID, "error", err)
			}
		}
	}
}

// writeScreeningError maps engine errors to HTTP status codes.
func (h *Handler) writeScreeningError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, screening.ErrNoRecords),
		errors.Is(err, screening.ErrEmptyName),
		errors.Is(err, screening.ErrInvalidKind):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	case errors.Is(err, sources.ErrNoDataSource),
		errors.Is(err, sources.ErrAllSourcesFailed):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": err.Error(),
		})
	default:
		slog.Error("screening failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "screening failed",
		})
	}
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// GetScreening retrieves a screening result by ID.
func (h *Handler) GetScreening(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	resultID := chi.URLParam(r, "id")

	if resultID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "screening id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	result, err := h.repo.GetResult(ctx, tenantID, resultID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to get screening result", "id", resultID, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "screening result not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListScreenings retrieves recent screening results for the tenant.
// Supports ?since=RFC3339 and ?limit=N query parameters.
func (h *Handler) ListScreenings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "since must be RFC3339",
			})
			return
		}
		since = parsed
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = parsed
	}

	results, err := h.repo.ListResults(ctx, tenantID, since, limit)
	if err != nil {
		slog.Error("failed to list screening results", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list screening results",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// UpdateDisposition sets the review disposition of one match.
func (h *Handler) UpdateDisposition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	resultID := chi.URLParam(r, "id")

	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil || seq < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "seq must be a non-negative integer",
		})
		return
	}

	var req domain.DispositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if !req.Disposition.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "disposition must be one of pending_review, confirmed_match, false_positive",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	result, err := h.repo.UpdateDisposition(ctx, tenantID, resultID, seq, req.Disposition)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "match not found",
			})
			return
		}
		slog.Error("failed to update disposition", "id", resultID, "seq", seq, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to update disposition",
		})
		return
	}

	if h.bus != nil {
		event := &domain.Event{
			TraceID: GetTraceID(ctx),
			Disposition: &domain.DispositionUpdatedEvent{
				ResultID:    resultID,
				Seq:         seq,
				Disposition: req.Disposition,
				Status:      result.Status,
				Note:        req.Note,
			},
		}
		if err := h.bus.Publish(ctx, tenantID, domain.TopicDispositionUpdated, event); err != nil {
			slog.Error("failed to publish disposition event", "id", resultID, "error", err)
		}
	}

	slog.Info("disposition updated",
		"resultId", resultID,
		"seq", seq,
		"disposition", req.Disposition,
	)
	writeJSON(w, http.StatusOK, result)
}

// Lists returns every supported watchlist with its configuration state.
func (h *Handler) Lists(w http.ResponseWriter, r *http.Request) {
	lists := h.engine.Lists()

	writeJSON(w, http.StatusOK, map[string]any{
		"lists": lists,
		"count": len(lists),
	})
}

// SourceStatus reports whether real list sources are configured.
func (h *Handler) SourceStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Sources())
}

// ListPolicies returns all loaded match policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	if h.policies == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "policy engine not available",
		})
		return
	}

	loaded := h.policies.Loaded()

	writeJSON(w, http.StatusOK, map[string]any{
		"policies": loaded,
		"count":    len(loaded),
	})
}

// CreatePolicyRequest is the request body for creating a match policy.
type CreatePolicyRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression"`
	Tag         string `json:"tag"`
	Enabled     bool   `json:"enabled"`
}

// CreatePolicy creates a new match policy and saves it to the database.
// Policies are saved globally (tenant_id = "*") so they apply to all
// tenants. After saving, call POST /policies/reload to apply.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.policies == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "policy engine not available",
		})
		return
	}

	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ID == "" || req.Name == "" || req.Expression == "" || req.Tag == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, expression, and tag are required",
		})
		return
	}

	cfg := &domain.PolicyConfig{
		ID:          req.ID,
		TenantID:    GlobalTenantID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Tag:         req.Tag,
		Enabled:     req.Enabled,
	}

	// Validate the CEL expression before persisting
	if err := h.policies.Validate(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid policy expression: " + err.Error(),
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.SavePolicyConfig(ctx, GlobalTenantID, cfg); err != nil {
			slog.Error("failed to save policy config", "id", cfg.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save policy",
			})
			return
		}
	}

	slog.Info("policy created", "id", cfg.ID, "name", cfg.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"policy":  cfg,
		"message": "Policy created. Call POST /policies/reload to apply changes.",
	})
}

// ReloadPolicies reloads all match policies from the database into the
// engine. This enables hot-reloading without server restart.
func (h *Handler) ReloadPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}
	if h.policies == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "policy engine not available",
		})
		return
	}

	configs, err := h.repo.ListPolicyConfigs(ctx, GlobalTenantID)
	if err != nil {
		slog.Error("failed to list policies from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load policies from database",
		})
		return
	}

	if err := h.policies.Reload(configs); err != nil {
		slog.Error("failed to reload policies into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload policies: " + err.Error(),
		})
		return
	}

	slog.Info("policies reloaded from database", "count", len(configs))
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "policies reloaded successfully",
		"count":   len(configs),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
