// Package hosts holds the proxy's only mutable state: per-host liveness
// and WOL counters. All probe writes and request reads go through Table.
package hosts

import (
	"sync"

	"github.com/rewol/rewol/internal/models"
)

// Status is a point-in-time copy of one host's row.
type Status struct {
	Host     models.Host
	Up       bool
	WOLCount uint64
}

type row struct {
	host     models.Host
	up       bool
	wolCount uint64
}

// Table is a synchronized host table keyed by name. Rows are created at
// construction and never added or removed afterwards.
type Table struct {
	mu    sync.RWMutex
	rows  map[string]*row
	order []string
}

// NewTable builds a table with one row per configured host, all down with
// a zero WOL count.
func NewTable(hosts []models.Host) *Table {
	t := &Table{rows: make(map[string]*row, len(hosts))}
	for _, h := range hosts {
		t.rows[h.Name] = &row{host: h}
		t.order = append(t.order, h.Name)
	}
	return t
}

// Lookup returns the configured host for name.
func (t *Table) Lookup(name string) (models.Host, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.rows[name]
	if !ok {
		return models.Host{}, false
	}
	return r.host, true
}

// SetUp records the latest probe result for name. Unknown names are
// ignored; the probe only ever iterates configured hosts.
func (t *Table) SetUp(name string, up bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.rows[name]; ok {
		r.up = up
	}
}

// IncrementWOL bumps the WOL counter for name and returns the new value.
func (t *Table) IncrementWOL(name string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.rows[name]
	if !ok {
		return 0
	}
	r.wolCount++
	return r.wolCount
}

// Snapshot returns a consistent copy of every row in configuration order.
func (t *Table) Snapshot() []Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Status, 0, len(t.order))
	for _, name := range t.order {
		r := t.rows[name]
		out = append(out, Status{Host: r.host, Up: r.up, WOLCount: r.wolCount})
	}
	return out
}

// Names returns the configured host names in configuration order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
