// Package filters provides the built-in named table filters: Sort,
// Limit, Pattern, Truncate, ExcludeLowValue, and ColumnCallback. Each
// filter registers itself with the datatable filter registry at init
// time; consumers that resolve filters by name blank-import this
// package:
//
//	import _ "github.com/ajitpratap0/quasar/pkg/datatable/filters"
//
// Filter parameters are positional and coerced with spf13/cast; arity
// or type mismatches fail with validation errors at construction.
package filters
