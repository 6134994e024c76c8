// Package screening orchestrates watchlist screening: it resolves
// list entries, scores records against them, applies the threshold
// gate and attribute bonuses, and ranks the resulting matches.
package screening

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/shrike/internal/domain"
	"github.com/opensource-finance/shrike/internal/match"
	"github.com/opensource-finance/shrike/internal/policy"
	"github.com/opensource-finance/shrike/internal/sources"
)

var (
	// ErrNoRecords means the batch contained nothing to screen.
	ErrNoRecords = errors.New("no records to screen")

	// ErrEmptyName means a record has no usable name. Screening
	// tolerates missing optional attributes but never a missing name.
	ErrEmptyName = errors.New("record name is required")

	// ErrInvalidKind means a record's entity kind is not recognized.
	ErrInvalidKind = errors.New("invalid entity kind")
)

// Bonuses applied after the threshold gate. They only ever push an
// already-qualifying score upward.
const (
	bonusDOBExact   = 0.10
	bonusDOBPartial = 0.05
	bonusCountry    = 0.05
)

// Engine screens records against resolved watchlist entries.
type Engine struct {
	resolver   *sources.Resolver
	policies   *policy.Engine
	maxWorkers int
	logger     *slog.Logger
}

// NewEngine creates a screening engine. policies may be nil when no
// match policies are configured.
func NewEngine(resolver *sources.Resolver, policies *policy.Engine, maxWorkers int, logger *slog.Logger) *Engine {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		resolver:   resolver,
		policies:   policies,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// ScreenBatch screens every record against the selected lists and
// returns one result per record, in input order. The whole batch
// shares one list resolution, so the demo flag and warning are
// uniform across results.
func (e *Engine) ScreenBatch(ctx context.Context, tenantID string, records []domain.ScreeningRecord, opts *domain.ScreeningOptions) (*domain.BatchResult, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	run := opts.Resolve()

	// Validate the whole batch up front: one bad record fails the
	// call before any list fetch happens. The caller's slice is
	// never written to.
	for i := range records {
		if strings.TrimSpace(records[i].Name) == "" {
			return nil, fmt.Errorf("%w: record %d", ErrEmptyName, i)
		}
		if records[i].Kind != "" && !records[i].Kind.Valid() {
			return nil, fmt.Errorf("%w: record %d kind %q", ErrInvalidKind, i, records[i].Kind)
		}
	}

	start := time.Now()
	resolution, err := e.resolver.Resolve(ctx, tenantID, run.Lists, run.AllowDemoData)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.ScreeningResult, len(records))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxWorkers)

	for i := range records {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			// Default the kind on a local copy so the caller's
			// records stay untouched.
			rec := records[idx]
			if rec.Kind == "" {
				rec.Kind = domain.KindIndividual
			}
			results[idx] = e.screenRecord(&rec, resolution, tenantID, run)
		}(i)
	}
	wg.Wait()

	e.logger.Info("batch screened",
		"tenantId", tenantID,
		"records", len(records),
		"entries", len(resolution.Entries),
		"demo", resolution.Demo,
		"durationMs", time.Since(start).Milliseconds(),
	)

	return &domain.BatchResult{
		Results:    results,
		IsDemoData: resolution.Demo,
		Warning:    resolution.Warning,
	}, nil
}

// ScreenName screens a single record, as batch-of-one sugar.
func (e *Engine) ScreenName(ctx context.Context, tenantID string, record domain.ScreeningRecord, opts *domain.ScreeningOptions) (*domain.SingleResult, error) {
	batch, err := e.ScreenBatch(ctx, tenantID, []domain.ScreeningRecord{record}, opts)
	if err != nil {
		return nil, err
	}
	return &domain.SingleResult{
		Result:     batch.Results[0],
		IsDemoData: batch.IsDemoData,
		Warning:    batch.Warning,
	}, nil
}

// screenRecord scores one record against every resolved entry.
func (e *Engine) screenRecord(record *domain.ScreeningRecord, resolution *sources.Resolution, tenantID string, run domain.RunOptions) *domain.ScreeningResult {
	var matches []domain.ScreeningMatch

	for i := range resolution.Entries {
		entry := &resolution.Entries[i]

		// Strict kind isolation.
		if entry.Kind != record.Kind {
			continue
		}

		best, matchedAlias := e.bestNameScore(record, entry, run.IncludeAliases)

		// Threshold gate on the raw name score. Bonuses never
		// rescue a sub-threshold name.
		if best.Score < run.Threshold {
			continue
		}

		final := best.Score
		dob := domain.DOBCheck{Matches: false, Confidence: domain.DOBNone}
		if run.CheckDOB {
			dob = match.MatchDOB(record.DateOfBirth, entry.DateOfBirth)
			switch dob.Confidence {
			case domain.DOBExact:
				final += bonusDOBExact
			case domain.DOBPartial:
				final += bonusDOBPartial
			}
		}

		countryMatch := false
		if run.CheckCountry && match.MatchCountry(record.Country, entry.Countries) {
			countryMatch = true
			final += bonusCountry
		}
		if final > 1.0 {
			final = 1.0
		}

		m := domain.ScreeningMatch{
			ID:    uuid.New().String(),
			Score: final,
			Entry: *entry,
			Detail: domain.MatchDetail{
				NameScore: domain.NameScore{
					Score:        best.Score,
					Levenshtein:  best.Levenshtein,
					JaroWinkler:  best.JaroWinkler,
					TokenSet:     best.TokenSet,
					SoundexEqual: best.SoundexEqual,
				},
				MatchedAlias: matchedAlias,
				DOB:          dob,
				CountryMatch: countryMatch,
			},
			Disposition: domain.DispositionPending,
		}

		if e.policies != nil {
			m.Tags = e.policies.Tags(&domain.PolicyInput{
				Score:        final,
				NameScore:    best.Score,
				DOBMatch:     dob.Matches,
				CountryMatch: countryMatch,
				ListCode:     string(entry.List),
				Category:     string(entry.Category),
				EntityKind:   string(record.Kind),
				MatchedAlias: matchedAlias,
			})
		}

		matches = append(matches, m)
	}

	// Rank by descending score, ties keep entry encounter order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	for i := range matches {
		matches[i].Seq = i
	}

	result := &domain.ScreeningResult{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		RecordID:   record.ID,
		RecordName: record.Name,
		Matches:    matches,
		IsDemoData: resolution.Demo,
		Timestamp:  time.Now().UTC(),
	}
	result.DeriveStatus()
	return result
}

// bestNameScore compares the record and entry primary names, then
// widens to aliases on both sides when enabled, keeping the best
// score and the alias that produced it.
func (e *Engine) bestNameScore(record *domain.ScreeningRecord, entry *domain.ListEntry, includeAliases bool) (match.Score, string) {
	best := match.CompareNames(record.Name, entry.Name)
	matchedAlias := ""

	if !includeAliases {
		return best, matchedAlias
	}

	for _, alias := range entry.Aliases {
		if s := match.CompareNames(record.Name, alias); s.Score > best.Score {
			best = s
			matchedAlias = alias
		}
	}
	for _, alias := range record.Aliases {
		if s := match.CompareNames(alias, entry.Name); s.Score > best.Score {
			best = s
			matchedAlias = alias
		}
	}
	return best, matchedAlias
}

// ListStatus pairs list metadata with its configuration state, for
// introspection endpoints.
type ListStatus struct {
	domain.ListInfo
	Configured bool `json:"isConfigured"`
}

// Lists enumerates every supported list with whether a live fetcher
// is registered for it. Informational only.
func (e *Engine) Lists() []ListStatus {
	configured := make(map[domain.ListCode]bool)
	for _, code := range e.resolver.ConfiguredCodes() {
		configured[code] = true
	}

	out := make([]ListStatus, 0, len(domain.AllListCodes()))
	for _, code := range domain.AllListCodes() {
		info, _ := code.Info()
		out = append(out, ListStatus{ListInfo: info, Configured: configured[code]})
	}
	return out
}

// SourceStatus summarizes the data-source configuration.
type SourceStatus struct {
	HasRealSources  bool              `json:"hasRealSources"`
	ConfiguredLists []domain.ListCode `json:"configuredLists"`
}

// Sources reports whether real fetchers are configured and for which
// lists.
func (e *Engine) Sources() SourceStatus {
	return SourceStatus{
		HasRealSources:  e.resolver.HasRealSources(),
		ConfiguredLists: e.resolver.ConfiguredCodes(),
	}
}
