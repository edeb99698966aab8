package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rewol/rewol/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// HostEntry is one host in the aggregated view, attributed to the backend
// that reported it.
type HostEntry struct {
	Name     string
	Up       bool
	WOLCount uint64
	Backend  models.Backend
}

// Snapshot is the server's merged view of all hosts across all backends.
// It is immutable once published; readers never see a partial update.
type Snapshot struct {
	Hosts       []HostEntry
	Unreachable []models.Backend
	UpdatedAt   time.Time

	index map[string]int
}

// Lookup finds the entry for a host name. Hosts of unreachable backends
// are absent.
func (s *Snapshot) Lookup(name string) (HostEntry, bool) {
	i, ok := s.index[name]
	if !ok {
		return HostEntry{}, false
	}
	return s.Hosts[i], true
}

// Aggregator polls every backend's status endpoint and maintains the
// current snapshot, replaced atomically after each cycle.
type Aggregator struct {
	backends   []models.Backend
	interval   time.Duration
	maxRetries int
	client     *http.Client
	logger     zerolog.Logger

	snap atomic.Pointer[Snapshot]
}

// NewAggregator creates an aggregator for the configured backends.
func NewAggregator(cfg *models.ServerConfig, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		backends:   cfg.Backends,
		interval:   cfg.MonitorInterval,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: cfg.PollTimeout},
		logger:     logger,
	}
}

// Run polls immediately and then on every interval tick until ctx is
// cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	a.logger.Info().
		Int("backends", len(a.backends)).
		Dur("interval", a.interval).
		Msg("backend monitoring started")

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("backend monitoring stopped")
			return
		case <-ticker.C:
			a.Poll(ctx)
		}
	}
}

// Poll runs one full cycle: every backend is fetched concurrently, then
// the results are merged into a fresh snapshot and swapped in. One
// backend's timeout never delays or fails another's fetch.
func (a *Aggregator) Poll(ctx context.Context) {
	results := make([]map[string]HostMetrics, len(a.backends))
	errs := make([]error, len(a.backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, backend := range a.backends {
		i, backend := i, backend
		g.Go(func() error {
			results[i], errs[i] = a.fetch(gctx, backend)
			return nil
		})
	}
	_ = g.Wait()

	a.snap.Store(a.merge(results, errs))
}

// Snapshot returns the current view. Before the first completed poll it is
// an empty snapshot, not nil.
func (a *Aggregator) Snapshot() *Snapshot {
	if s := a.snap.Load(); s != nil {
		return s
	}
	return &Snapshot{index: map[string]int{}}
}

// fetch reads one backend's status endpoint, retrying up to maxRetries
// attempts before giving up on this cycle.
func (a *Aggregator) fetch(ctx context.Context, backend models.Backend) (map[string]HostMetrics, error) {
	url := fmt.Sprintf("http://%s/status", backend.Address)

	var lastErr error
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		hosts, err := a.fetchOnce(ctx, backend, url)
		if err == nil {
			return hosts, nil
		}
		lastErr = err
		a.logger.Debug().
			Str("backend", backend.DisplayName).
			Int("attempt", attempt).
			Err(err).
			Msg("backend fetch failed")
	}

	a.logger.Warn().
		Str("backend", backend.DisplayName).
		Str("address", backend.Address).
		Err(lastErr).
		Msg("backend unreachable")
	return nil, lastErr
}

func (a *Aggregator) fetchOnce(ctx context.Context, backend models.Backend, url string) (map[string]HostMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	hosts, malformed := ParseStatus(string(body))
	for _, line := range malformed {
		a.logger.Warn().
			Str("backend", backend.DisplayName).
			Str("line", line).
			Msg("skipping malformed metric line")
	}
	return hosts, nil
}

// merge builds a new snapshot from per-backend results, in configured
// backend order. A host claimed by two backends resolves to the later one.
// Unreachable backends contribute no hosts, only their placeholder.
func (a *Aggregator) merge(results []map[string]HostMetrics, errs []error) *Snapshot {
	snap := &Snapshot{
		UpdatedAt: time.Now(),
		index:     make(map[string]int),
	}

	for i, backend := range a.backends {
		if errs[i] != nil {
			snap.Unreachable = append(snap.Unreachable, backend)
			continue
		}

		names := make([]string, 0, len(results[i]))
		for name := range results[i] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			m := results[i][name]
			entry := HostEntry{Name: name, Up: m.Up, WOLCount: m.WOLCount, Backend: backend}
			if j, ok := snap.index[name]; ok {
				snap.Hosts[j] = entry
				continue
			}
			snap.index[name] = len(snap.Hosts)
			snap.Hosts = append(snap.Hosts, entry)
		}
	}

	return snap
}
