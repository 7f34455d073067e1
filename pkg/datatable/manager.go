package datatable

import (
	"sync"

	"github.com/ajitpratap0/quasar/pkg/config"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/metrics"
)

// Manager owns the table registry: every table is registered here at
// creation and addressed by its integer id. Sub-table references are ids
// into this registry, which is what makes the flat serialization format
// possible.
//
// Ids start at 1 so that NoSubtable (0) stays an unambiguous sentinel.
// Released ids are never reused within a manager's lifetime; a released
// id resolves to a lookup error, a reserved-then-deleted id resolves to
// a "marked deleted" lookup error.
type Manager struct {
	mu     sync.RWMutex
	tables map[int]*Table
	nextID int
	cfg    *config.Config
}

// NewManager creates a registry with default configuration.
func NewManager() *Manager {
	return NewManagerWithConfig(config.NewConfig())
}

// NewManagerWithConfig creates a registry whose tables inherit limits
// from cfg.
func NewManagerWithConfig(cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Manager{
		tables: make(map[int]*Table),
		nextID: 1,
		cfg:    cfg,
	}
}

// Config returns the manager's configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// NewTable creates and registers a new empty table.
func (m *Manager) NewTable() *Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newTableLocked()
}

func (m *Manager) newTableLocked() *Table {
	id := m.nextID
	m.nextID++
	t := newTable(id, m)
	m.tables[id] = t
	metrics.TablesRegistered.Inc()
	metrics.LiveTables.Inc()
	return t
}

// Get resolves a table id. Unknown and released ids return a lookup
// error; ids marked deleted return a lookup error naming the deletion.
func (m *Manager) Get(id int) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeLookup, "table %d not found", id)
	}
	if t == nil {
		return nil, errors.Newf(errors.ErrorTypeLookup, "table %d marked deleted", id)
	}
	return t, nil
}

// Has reports whether id resolves to a live table.
func (m *Manager) Has(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	return ok && t != nil
}

// Release removes a table from the registry. Releasing an unknown id is
// a no-op. Rows that still reference the id will get lookup errors on
// resolution.
func (m *Manager) Release(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[id]; ok {
		delete(m.tables, id)
		if t != nil {
			metrics.TablesReleased.Inc()
			metrics.LiveTables.Dec()
		}
	}
}

// MarkDeleted keeps the id registered but resolving to a deletion error.
// Useful when a caller wants dangling references diagnosed as deliberate
// deletions rather than unknown ids.
func (m *Manager) MarkDeleted(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[id]; ok && t != nil {
		m.tables[id] = nil
		metrics.TablesReleased.Inc()
		metrics.LiveTables.Dec()
	}
}

// Count returns the number of live tables.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.tables {
		if t != nil {
			n++
		}
	}
	return n
}

// IDs returns the ids of all live tables, unordered.
func (m *Manager) IDs() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.tables))
	for id, t := range m.tables {
		if t != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Reset drops every registered table and restarts id allocation. Meant
// for tests and process-lifetime boundaries; rows created before a reset
// must not be used after it.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tables {
		if t != nil {
			metrics.TablesReleased.Inc()
			metrics.LiveTables.Dec()
		}
	}
	m.tables = make(map[int]*Table)
	m.nextID = 1
}

var defaultManager = NewManager()

// DefaultManager returns the process-wide registry used by the
// package-level constructors.
func DefaultManager() *Manager {
	return defaultManager
}

// NewTable creates a table registered with the default manager.
func NewTable() *Table {
	return defaultManager.NewTable()
}

// Get resolves a table id against the default manager.
func Get(id int) (*Table, error) {
	return defaultManager.Get(id)
}
