package probe

import (
	"context"
	"sync"
	"time"

	"github.com/rewol/rewol/internal/hosts"
	"github.com/rs/zerolog"
)

// Monitor periodically probes every configured host and writes the result
// into the host table. Probes within a cycle run concurrently; a host still
// being probed when the next cycle starts is skipped for that cycle, so two
// probes of the same host never overlap.
type Monitor struct {
	table    *hosts.Table
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// NewMonitor creates a monitor over table using pinger.
func NewMonitor(table *hosts.Table, pinger Pinger, interval, timeout time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		table:    table,
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// Run probes all hosts immediately, then on every interval tick, until ctx
// is cancelled. It returns after in-flight probes have finished.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info().
		Dur("interval", m.interval).
		Dur("timeout", m.timeout).
		Msg("host monitoring started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			m.wg.Wait()
			m.logger.Info().Msg("host monitoring stopped")
			return
		case <-ticker.C:
			m.cycle(ctx)
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	for _, name := range m.table.Names() {
		host, ok := m.table.Lookup(name)
		if !ok {
			continue
		}
		if !m.acquire(name) {
			m.logger.Debug().Str("host", name).Msg("previous probe still running, skipping")
			continue
		}

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			defer m.release(host.Name)

			pctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()

			err := m.pinger.Ping(pctx, host.TargetAddr)
			m.table.SetUp(host.Name, err == nil)

			ev := m.logger.Debug().Str("host", host.Name).Str("addr", host.TargetAddr)
			if err != nil {
				ev.Err(err).Msg("host down")
				return
			}
			ev.Msg("host up")
		}()
	}
}

func (m *Monitor) acquire(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight[name] {
		return false
	}
	m.inflight[name] = true
	return true
}

func (m *Monitor) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, name)
}
