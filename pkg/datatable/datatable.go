// Package datatable implements Quasar's hierarchical report table engine:
// ordered tables of labeled rows where any row may reference a nested
// sub-table through a manager-owned registry, forming a forest of
// independently owned tables linked by integer id.
//
// # Overview
//
// The package provides:
//   - Row: one record (ordered columns + metadata + optional sub-table reference)
//   - Table: ordered rows plus one optional summary row, with label indexing,
//     row-count capping, recursive merge, sorting, and flat serialization
//   - Manager: the registry resolving table ids to live tables
//   - Filter: named transformations applied to tables, immediately or queued
//
// # Basic Usage
//
//	mgr := datatable.NewManager()
//	table := mgr.NewTable()
//
//	row := datatable.NewRow()
//	row.SetColumn(datatable.LabelColumn, "Search Engines")
//	row.SetColumn("visits", int64(100))
//	table.AddRow(row)
//
//	blobs, err := table.Serialize(datatable.SerializeOptions{})
//
// # Sub-tables
//
// Sub-tables are referenced by id, never embedded: a row stores the id of a
// table registered with the same manager. Destroying a parent table does not
// destroy its sub-tables; they are independently owned, which allows loading
// only the branches of a report tree that are actually needed.
//
// # Concurrency
//
// The Manager is safe for concurrent use. Tables and Rows are not: a table
// plus its reachable sub-table closure forms a single unit of mutual
// exclusion and must not be mutated from multiple goroutines without
// external locking.
package datatable

// LabelColumn is the column naming a row within its table. A row's label,
// when present, identifies it for index lookups and merging.
const LabelColumn = "label"

// SummaryLabel is the reserved label of the summary row. It doubles as the
// summary row's key in the serialized wire form.
const SummaryLabel = "-1"

// SummaryRowID is the reserved row id addressing the summary row, distinct
// from all sequence row ids.
const SummaryRowID = -1

// NoSubtable is the sub-table reference value meaning "no sub-table".
// Registry ids start at 1, so 0 is never a valid reference.
const NoSubtable = 0
