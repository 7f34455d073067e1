// Package aggregation defines the per-column operators used when two rows
// representing the same entity are combined. Operators are registered by
// name in a startup-time registry, mirroring how named components are
// resolved elsewhere in Quasar, so tables can carry plain string operator
// names in their configuration and serialized form.
package aggregation

import (
	"fmt"
	"sync"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/errors"
)

// Built-in operator names.
const (
	// Sum adds numeric values; the default for every column.
	Sum = "sum"
	// Max keeps the larger numeric value.
	Max = "max"
	// Min keeps the smaller numeric value.
	Min = "min"
	// First keeps the existing value.
	First = "first"
	// Last always takes the incoming value.
	Last = "last"
	// Skip never touches the existing value.
	Skip = "skip"
)

// Func combines an existing column value with an incoming one and returns
// the merged value. Both values are present when a Func runs; the caller
// copies incoming values for columns the receiver does not have yet.
type Func func(existing, incoming interface{}) interface{}

// Registry maps operator names to combining functions. It is safe for
// concurrent use; registration is expected at startup, resolution on
// every merge.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Func
}

// Global registry instance with built-ins pre-registered
var globalRegistry = NewRegistry()

// NewRegistry creates a registry with all built-in operators registered.
func NewRegistry() *Registry {
	r := &Registry{
		ops: make(map[string]Func),
	}
	r.ops[Sum] = sumFunc
	r.ops[Max] = maxFunc
	r.ops[Min] = minFunc
	r.ops[First] = firstFunc
	r.ops[Last] = lastFunc
	r.ops[Skip] = skipFunc
	return r
}

// Register adds a custom operator. Registering a name twice is a
// configuration error.
func (r *Registry) Register(name string, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ops[name]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("aggregation operator %s already registered", name))
	}

	r.ops[name] = fn
	return nil
}

// Resolve returns the operator registered under name.
func (r *Registry) Resolve(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, exists := r.ops[name]
	if !exists {
		return nil, errors.New(errors.ErrorTypeValidation, fmt.Sprintf("unknown aggregation operator: %s", name))
	}
	return fn, nil
}

// Has reports whether an operator is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.ops[name]
	return exists
}

// Register adds a custom operator to the global registry.
func Register(name string, fn Func) error {
	return globalRegistry.Register(name, fn)
}

// Resolve returns an operator from the global registry.
func Resolve(name string) (Func, error) {
	return globalRegistry.Resolve(name)
}

// Has checks the global registry for an operator name.
func Has(name string) bool {
	return globalRegistry.Has(name)
}

// Apply combines existing and incoming using the named operator from the
// global registry. An empty name means the default Sum.
func Apply(name string, existing, incoming interface{}) (interface{}, error) {
	if name == "" {
		name = Sum
	}
	fn, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	return fn(existing, incoming), nil
}

// asInt64 reports whether v is an integral Go value, without coercing
// floats or numeric strings. Keeping integer columns integral through
// repeated merges avoids float drift in count-like columns.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	}
	return 0, false
}

// asFloat64 coerces any numeric-like value (ints, floats, json.Number,
// numeric strings, bools) to float64.
func asFloat64(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func sumFunc(existing, incoming interface{}) interface{} {
	if ei, ok := asInt64(existing); ok {
		if ii, ok := asInt64(incoming); ok {
			return ei + ii
		}
	}
	ef, eok := asFloat64(existing)
	inf, iok := asFloat64(incoming)
	switch {
	case eok && iok:
		return ef + inf
	case iok:
		// Non-numeric existing is treated as zero
		return incoming
	default:
		// Non-numeric incoming leaves the existing value alone
		return existing
	}
}

func maxFunc(existing, incoming interface{}) interface{} {
	ef, eok := asFloat64(existing)
	inf, iok := asFloat64(incoming)
	switch {
	case eok && iok:
		if inf > ef {
			return incoming
		}
		return existing
	case iok:
		return incoming
	default:
		return existing
	}
}

func minFunc(existing, incoming interface{}) interface{} {
	ef, eok := asFloat64(existing)
	inf, iok := asFloat64(incoming)
	switch {
	case eok && iok:
		if inf < ef {
			return incoming
		}
		return existing
	case iok:
		return incoming
	default:
		return existing
	}
}

func firstFunc(existing, _ interface{}) interface{} {
	return existing
}

func lastFunc(_, incoming interface{}) interface{} {
	return incoming
}

func skipFunc(existing, _ interface{}) interface{} {
	return existing
}
