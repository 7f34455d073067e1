// Package quasar provides an in-memory hierarchical tabular data engine
// for analytics report data: trees of labeled rows where any row can own
// a nested breakdown table (Search Engines -> Keywords per engine).
//
// # Data model
//
// A Table is an ordered collection of Rows plus at most one summary row.
// Rows carry an insertion-ordered column mapping, a metadata mapping,
// and an optional sub-table reference. Sub-tables are not embedded: a
// row holds an integer id resolved through a Manager, so a report tree
// is really a forest of independently owned tables linked by id. That
// indirection is what enables the flat archive format and lazy partial
// loading of only the branches a caller needs.
//
// # Quick start
//
//	import (
//	    "github.com/ajitpratap0/quasar/pkg/datatable"
//	    _ "github.com/ajitpratap0/quasar/pkg/datatable/filters"
//	)
//
//	mgr := datatable.NewManager()
//	table := mgr.NewTable()
//	row := datatable.NewRow()
//	row.SetColumn(datatable.LabelColumn, "Search Engines")
//	row.SetColumn("visits", int64(420))
//	table.AddRow(row)
//
//	// merge another report into this one, summing matched labels
//	table.AddDataTable(other)
//
//	// flatten the forest for storage; the root is always keyed 0
//	blobs, err := table.Serialize(datatable.SerializeOptions{})
//
// # Key packages
//
//	pkg/datatable          - Row, Table, Manager, filter pipeline
//	pkg/datatable/filters  - built-in named filters (Sort, Limit, ...)
//	pkg/aggregation        - per-column aggregation operators
//	pkg/archive            - compressed archive container for table forests
//	pkg/compression        - multi-algorithm compression
//	pkg/config             - engine defaults, YAML/env loading
//	pkg/errors             - structured typed errors
//	pkg/logger             - structured logging
//	pkg/metrics            - prometheus collectors for engine operations
//
// # Row limiting and summary rows
//
// Tables can cap their row count. Once the cap is reached, further rows
// fold into a single summary row (label "-1") whose columns aggregate
// everything that was cut, per the table's per-column aggregation
// operators. The same folding backs serialization-time truncation, so
// archived reports stay bounded while totals stay accurate.
//
// # Concurrency
//
// The Manager is safe for concurrent use. Tables and rows are not: a
// table plus its reachable sub-table closure is one unit of mutual
// exclusion, guarded by the caller.
package quasar
