// Package sources resolves watchlist entries from configured list
// fetchers, with caching and a guarded demo-data fallback.
package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opensource-finance/shrike/internal/domain"
)

var (
	// ErrNoDataSource means no fetcher is configured and demo data is
	// not permitted.
	ErrNoDataSource = errors.New("no list data source configured")

	// ErrAllSourcesFailed means every requested list fetch failed.
	ErrAllSourcesFailed = errors.New("all list sources failed")
)

// Fetcher retrieves the entries of one watchlist from its upstream
// source. Implementations own their transport and parsing; the
// resolver owns caching, fallback and fan-out.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.ListEntry, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) ([]domain.ListEntry, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) ([]domain.ListEntry, error) {
	return f(ctx)
}

// Resolution is the outcome of resolving list entries for a request.
type Resolution struct {
	Entries []domain.ListEntry

	// Demo is true when the bundled demo dataset served the request.
	Demo bool

	// Skipped lists were requested but have no configured fetcher.
	Skipped []domain.ListCode

	// Failed lists have a fetcher that returned an error.
	Failed []domain.ListCode

	// Warning is a human-readable note about demo data, skipped or
	// failed lists. Empty when the resolution is clean.
	Warning string
}

// Resolver turns requested list codes into watchlist entries. Fetchers
// are registered per list code; an optional cache avoids refetching
// within the TTL. In production the demo fallback must be explicitly
// allowed per request, otherwise resolution fails.
type Resolver struct {
	mu       sync.RWMutex
	fetchers map[domain.ListCode]Fetcher

	cache      domain.Cache
	ttl        time.Duration
	production bool
	logger     *slog.Logger
}

// NewResolver creates a resolver. cache may be nil to disable caching.
func NewResolver(cache domain.Cache, ttl time.Duration, production bool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetchers:   make(map[domain.ListCode]Fetcher),
		cache:      cache,
		ttl:        ttl,
		production: production,
		logger:     logger,
	}
}

// Register installs a fetcher for a list code, replacing any previous
// fetcher for that code.
func (r *Resolver) Register(code domain.ListCode, f Fetcher) error {
	if !code.Valid() {
		return fmt.Errorf("unknown list code: %s", code)
	}
	if f == nil {
		return fmt.Errorf("nil fetcher for list %s", code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[code] = f
	return nil
}

// HasRealSources reports whether any fetcher is registered.
func (r *Resolver) HasRealSources() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fetchers) > 0
}

// ConfiguredCodes returns the registered list codes in stable order.
func (r *Resolver) ConfiguredCodes() []domain.ListCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]domain.ListCode, 0, len(r.fetchers))
	for code := range r.fetchers {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Resolve gathers entries for the requested lists. With no fetchers
// registered it falls back to demo data when allowed; with fetchers,
// each requested list is served from cache or fetched concurrently.
// Lists without a fetcher are skipped, failed fetches degrade the
// resolution, and only a total failure is an error.
func (r *Resolver) Resolve(ctx context.Context, tenantID string, codes []domain.ListCode, allowDemo bool) (*Resolution, error) {
	if len(codes) == 0 {
		codes = domain.DefaultListCodes()
	}

	r.mu.RLock()
	fetchers := make(map[domain.ListCode]Fetcher, len(r.fetchers))
	for code, f := range r.fetchers {
		fetchers[code] = f
	}
	r.mu.RUnlock()

	if len(fetchers) == 0 {
		// Demo fallback is implicit outside production. In production
		// the caller must opt in explicitly; silent demo results in a
		// compliance context are a configuration error.
		if r.production && !allowDemo {
			return nil, fmt.Errorf("%w: demo data is not allowed in production", ErrNoDataSource)
		}
		res := &Resolution{
			Entries: DemoEntries(codes),
			Demo:    true,
			Warning: DemoWarning,
		}
		r.logger.Warn("serving demo watchlist data", "tenantId", tenantID, "lists", codeStrings(codes))
		return res, nil
	}

	res := &Resolution{}
	slots := make([][]domain.ListEntry, len(codes))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, code := range codes {
		f, ok := fetchers[code]
		if !ok {
			res.Skipped = append(res.Skipped, code)
			continue
		}

		wg.Add(1)
		go func(i int, code domain.ListCode, f Fetcher) {
			defer wg.Done()

			entries, err := r.load(ctx, tenantID, code, f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error("list fetch failed", "tenantId", tenantID, "list", string(code), "error", err)
				res.Failed = append(res.Failed, code)
				return
			}
			slots[i] = entries
		}(i, code, f)
	}
	wg.Wait()

	// Flatten in requested-code order so results are deterministic.
	for _, entries := range slots {
		res.Entries = append(res.Entries, entries...)
	}

	attempted := len(codes) - len(res.Skipped)
	if attempted > 0 && len(res.Failed) == attempted {
		return nil, fmt.Errorf("%w: %s", ErrAllSourcesFailed, strings.Join(codeStrings(res.Failed), ", "))
	}

	sort.Slice(res.Failed, func(i, j int) bool { return res.Failed[i] < res.Failed[j] })
	res.Warning = resolutionWarning(res.Skipped, res.Failed)
	return res, nil
}

// load serves one list from cache when possible, fetching and caching
// on a miss.
func (r *Resolver) load(ctx context.Context, tenantID string, code domain.ListCode, f Fetcher) ([]domain.ListEntry, error) {
	if r.cache != nil {
		cached, err := r.cache.GetListEntries(ctx, tenantID, code)
		if err != nil {
			r.logger.Warn("list cache read failed", "list", string(code), "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	entries, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetListEntries(ctx, tenantID, code, entries, r.ttl); err != nil {
			r.logger.Warn("list cache write failed", "list", string(code), "error", err)
		}
	}
	return entries, nil
}

func resolutionWarning(skipped, failed []domain.ListCode) string {
	var parts []string
	if len(skipped) > 0 {
		parts = append(parts, "no source configured for lists: "+strings.Join(codeStrings(skipped), ", "))
	}
	if len(failed) > 0 {
		parts = append(parts, "fetch failed for lists: "+strings.Join(codeStrings(failed), ", "))
	}
	return strings.Join(parts, "; ")
}

func codeStrings(codes []domain.ListCode) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
