package datatable

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/logger"
	"github.com/ajitpratap0/quasar/pkg/metrics"
)

// Filter is a named transformation applied to a table. Filters mutate
// the table in place; recursion into sub-tables is each filter's own
// convention (typically a recursive flag parameter or the table's
// recursive-sort flag), not enforced here.
type Filter interface {
	Apply(t *Table) error
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(t *Table) error

// Apply implements Filter.
func (f FilterFunc) Apply(t *Table) error {
	return f(t)
}

// Factory constructs a filter from positional parameters. Arity and
// type failures are validation errors.
type Factory func(params ...interface{}) (Filter, error)

// FilterRegistry maps filter names to factories. Filters register at
// init() time; consumers blank-import the filters package.
type FilterRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewFilterRegistry creates an empty filter registry.
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{factories: make(map[string]Factory)}
}

// Register adds a factory under a name. Registering a duplicate name
// fails.
func (r *FilterRegistry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "filter %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Resolve builds a filter by name with the given parameters.
func (r *FilterRegistry) Resolve(name string, params ...interface{}) (Filter, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()
	if !exists {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown filter %q", name)
	}
	return factory(params...)
}

// Names returns the registered filter names, sorted.
func (r *FilterRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var filterRegistry = NewFilterRegistry()

// RegisterFilter adds a factory to the package-level registry. Panics
// on duplicate names; registration happens from init functions where
// a duplicate is a programming error.
func RegisterFilter(name string, factory Factory) {
	if err := filterRegistry.Register(name, factory); err != nil {
		panic(err)
	}
}

// ResolveFilter builds a filter from the package-level registry.
func ResolveFilter(name string, params ...interface{}) (Filter, error) {
	return filterRegistry.Resolve(name, params...)
}

// FilterNames returns the names registered in the package-level
// registry, sorted.
func FilterNames() []string {
	return filterRegistry.Names()
}

// Filter resolves a named filter and applies it to the table
// synchronously.
func (t *Table) Filter(name string, params ...interface{}) error {
	f, err := ResolveFilter(name, params...)
	if err != nil {
		metrics.FiltersApplied.WithLabelValues(name, "error").Inc()
		return err
	}
	if err := f.Apply(t); err != nil {
		metrics.FiltersApplied.WithLabelValues(name, "error").Inc()
		return err
	}
	metrics.FiltersApplied.WithLabelValues(name, "ok").Inc()
	return nil
}

// ApplyFilterFunc invokes a function value immediately with the table.
func (t *Table) ApplyFilterFunc(fn FilterFunc) error {
	return fn(t)
}

type queuedFilter struct {
	name     string
	params   []interface{}
	fn       FilterFunc
	priority int
}

// QueueFilter defers a named filter until ApplyQueuedFilters, at
// default priority.
func (t *Table) QueueFilter(name string, params ...interface{}) {
	t.QueueFilterWithPriority(0, name, params...)
}

// QueueFilterWithPriority defers a named filter with an explicit
// priority. Lower priorities run first; equal priorities run in the
// order queued.
func (t *Table) QueueFilterWithPriority(priority int, name string, params ...interface{}) {
	t.queuedFilters = append(t.queuedFilters, queuedFilter{
		name:     name,
		params:   params,
		priority: priority,
	})
}

// QueueFilterFunc defers a function-valued filter at default priority.
func (t *Table) QueueFilterFunc(fn FilterFunc) {
	t.queuedFilters = append(t.queuedFilters, queuedFilter{fn: fn})
}

// ApplyQueuedFilters runs every queued filter in priority order (FIFO
// within equal priority) and clears the queue. The first failing
// filter aborts; the queue is cleared regardless, filters already
// applied stay applied.
func (t *Table) ApplyQueuedFilters() error {
	queue := t.queuedFilters
	t.queuedFilters = nil
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].priority < queue[j].priority
	})
	for _, qf := range queue {
		if qf.fn != nil {
			if err := t.ApplyFilterFunc(qf.fn); err != nil {
				return err
			}
			continue
		}
		if err := t.Filter(qf.name, qf.params...); err != nil {
			logger.Debug("queued filter failed",
				zap.String("filter", qf.name),
				zap.Int("table_id", t.id),
				zap.Error(err),
			)
			return err
		}
	}
	return nil
}
