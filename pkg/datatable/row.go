package datatable

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/aggregation"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

// Row is a single record: an insertion-ordered column mapping, a metadata
// mapping, and an optional sub-table reference. Column order is meaningful;
// column discovery uses the first row of a table.
//
// The sub-table relationship is a lookup key into the manager's registry,
// not ownership: the referenced table has its own lifecycle.
type Row struct {
	columnOrder []string
	columns     map[string]interface{}
	metadata    map[string]interface{}

	subtableID int
	mgr        *Manager
	// resolved sub-table pointer, transient; cleared after serialization
	subtableCache *Table
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{
		columns:  make(map[string]interface{}, 8),
		metadata: make(map[string]interface{}, 4),
	}
}

// NewRowFromMap creates a row from a plain column map. Map iteration order
// is not deterministic, so columns are recorded sorted by name; callers
// that care about column order should use SetColumn directly.
func NewRowFromMap(columns map[string]interface{}) *Row {
	r := NewRow()
	if label, ok := columns[LabelColumn]; ok {
		r.SetColumn(LabelColumn, label)
	}
	for _, name := range sortedKeys(columns) {
		if name == LabelColumn {
			continue
		}
		r.SetColumn(name, columns[name])
	}
	return r
}

// SetColumn sets a column value, appending the column to the order on
// first assignment.
func (r *Row) SetColumn(name string, value interface{}) {
	if _, exists := r.columns[name]; !exists {
		r.columnOrder = append(r.columnOrder, name)
	}
	r.columns[name] = value
}

// Column returns a column value and whether the column exists.
func (r *Row) Column(name string) (interface{}, bool) {
	v, ok := r.columns[name]
	return v, ok
}

// DeleteColumn removes a column. It reports whether the column existed.
func (r *Row) DeleteColumn(name string) bool {
	if _, exists := r.columns[name]; !exists {
		return false
	}
	delete(r.columns, name)
	for i, n := range r.columnOrder {
		if n == name {
			r.columnOrder = append(r.columnOrder[:i], r.columnOrder[i+1:]...)
			break
		}
	}
	return true
}

// RenameColumn renames a column in place, keeping its position in the
// column order. Renaming to an existing column name overwrites that
// column's value and drops the old position.
func (r *Row) RenameColumn(oldName, newName string) {
	v, ok := r.columns[oldName]
	if !ok || oldName == newName {
		return
	}
	_, newExists := r.columns[newName]
	delete(r.columns, oldName)
	r.columns[newName] = v
	for i, n := range r.columnOrder {
		if n == oldName {
			if newExists {
				r.columnOrder = append(r.columnOrder[:i], r.columnOrder[i+1:]...)
			} else {
				r.columnOrder[i] = newName
			}
			break
		}
	}
}

// ColumnNames returns the column names in insertion order.
func (r *Row) ColumnNames() []string {
	names := make([]string, len(r.columnOrder))
	copy(names, r.columnOrder)
	return names
}

// Columns returns a snapshot of the column mapping.
func (r *Row) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, len(r.columns))
	for k, v := range r.columns {
		cols[k] = v
	}
	return cols
}

// Label returns the row's label column as a string. The second return
// value is false when the row has no label column.
func (r *Row) Label() (string, bool) {
	v, ok := r.columns[LabelColumn]
	if !ok {
		return "", false
	}
	return cast.ToString(v), true
}

// SetMetadata sets a metadata value.
func (r *Row) SetMetadata(name string, value interface{}) {
	r.metadata[name] = value
}

// Metadata returns a metadata value and whether it exists.
func (r *Row) Metadata(name string) (interface{}, bool) {
	v, ok := r.metadata[name]
	return v, ok
}

// DeleteMetadata removes a metadata entry. It reports whether the entry
// existed.
func (r *Row) DeleteMetadata(name string) bool {
	if _, exists := r.metadata[name]; !exists {
		return false
	}
	delete(r.metadata, name)
	return true
}

// MetadataMap returns a snapshot of the metadata mapping.
func (r *Row) MetadataMap() map[string]interface{} {
	md := make(map[string]interface{}, len(r.metadata))
	for k, v := range r.metadata {
		md[k] = v
	}
	return md
}

// clearMetadata drops all metadata entries.
func (r *Row) clearMetadata() {
	r.metadata = make(map[string]interface{}, 4)
}

// SetSubtable points the row at a sub-table. The table must be registered
// with a manager; the row keeps only the id plus a transient resolved
// pointer.
func (r *Row) SetSubtable(t *Table) {
	r.subtableID = t.ID()
	r.mgr = t.mgr
	r.subtableCache = t
}

// SetSubtableID points the row at a sub-table by raw registry id, without
// resolving it. Used by loaders that rewire references after the fact.
func (r *Row) SetSubtableID(id int, mgr *Manager) {
	r.subtableID = id
	r.mgr = mgr
	r.subtableCache = nil
}

// SubtableID returns the raw sub-table reference (NoSubtable when absent).
func (r *Row) SubtableID() int {
	return r.subtableID
}

// HasSubtable reports whether the row references a sub-table.
func (r *Row) HasSubtable() bool {
	return r.subtableID != NoSubtable
}

// Subtable resolves the row's sub-table through the registry. It returns
// (nil, nil) when the row has no sub-table, and a lookup error when the
// reference dangles.
func (r *Row) Subtable() (*Table, error) {
	if r.subtableID == NoSubtable {
		return nil, nil
	}
	if r.subtableCache != nil {
		return r.subtableCache, nil
	}
	if r.mgr == nil {
		return nil, errors.Newf(errors.ErrorTypeLookup, "sub-table %d referenced without a manager", r.subtableID)
	}
	t, err := r.mgr.Get(r.subtableID)
	if err != nil {
		return nil, err
	}
	r.subtableCache = t
	return t, nil
}

// clearSubtableCache drops the transient resolved pointer. Serialization
// calls this after each table's blob is produced so stale derived state
// never outlives an encode pass.
func (r *Row) clearSubtableCache() {
	r.subtableCache = nil
}

// RemoveSubtable clears the sub-table reference. The referenced table is
// not released; it stays independently owned by the registry.
func (r *Row) RemoveSubtable() {
	r.subtableID = NoSubtable
	r.subtableCache = nil
}

// SumRow combines other's columns into this row. For every column present
// in other (label excluded): if this row lacks the column it is copied,
// otherwise the two values are combined with the operator resolved from
// ops for that column name (default sum). Metadata is copied from other
// only for keys this row does not already have, and only when
// copyMetadata is true.
func (r *Row) SumRow(other *Row, copyMetadata bool, ops map[string]string) error {
	for _, name := range other.columnOrder {
		if name == LabelColumn {
			continue
		}
		incoming := other.columns[name]
		existing, exists := r.columns[name]
		if !exists {
			r.SetColumn(name, incoming)
			continue
		}
		merged, err := aggregation.Apply(ops[name], existing, incoming)
		if err != nil {
			return err
		}
		r.columns[name] = merged
	}

	if copyMetadata {
		for k, v := range other.metadata {
			if _, exists := r.metadata[k]; !exists {
				r.metadata[k] = v
			}
		}
	}
	return nil
}

// SumSubtable recursively merges other into this row's own sub-table,
// creating one registered with other's manager if the row has none. The
// created table carries the provided aggregation operators.
func (r *Row) SumSubtable(other *Table, ops map[string]string) error {
	if other == nil {
		return nil
	}
	own, err := r.Subtable()
	if err != nil {
		return err
	}
	if own == nil {
		own = other.mgr.NewTable()
		if err := own.SetAggregationOperations(ops); err != nil {
			return err
		}
		r.SetSubtable(own)
	}
	return own.AddDataTable(other)
}

// Equal reports whether two rows have equal column and metadata mappings,
// order-independent and numeric-aware (5 equals 5.0). Sub-table identity
// is not compared. Used by tests, not production logic.
func (r *Row) Equal(other *Row) bool {
	if other == nil {
		return false
	}
	if len(r.columns) != len(other.columns) || len(r.metadata) != len(other.metadata) {
		return false
	}
	for k, v := range r.columns {
		ov, ok := other.columns[k]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	for k, v := range r.metadata {
		ov, ok := other.metadata[k]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

// Copy returns a deep copy of the row. Columns and metadata are copied;
// a referenced sub-table tree is copied into fresh registry entries so
// the copy never aliases the original's tables. Depth-guarded through
// the sub-table's configured ceiling.
func (r *Row) Copy() (*Row, error) {
	return r.copyDepth(0)
}

func (r *Row) copyDepth(depth int) (*Row, error) {
	dup := NewRow()
	for _, name := range r.columnOrder {
		dup.SetColumn(name, r.columns[name])
	}
	for k, v := range r.metadata {
		dup.metadata[k] = v
	}
	if r.HasSubtable() {
		sub, err := r.Subtable()
		if err != nil {
			return nil, err
		}
		subCopy, err := sub.copyDepth(depth + 1)
		if err != nil {
			return nil, err
		}
		dup.SetSubtable(subCopy)
	}
	return dup, nil
}

// copyColumnsOnly returns a shallow copy of the row's columns and sub-table
// reference, without metadata. Summary row seeding uses this.
func (r *Row) copyColumnsOnly() *Row {
	dup := NewRow()
	for _, name := range r.columnOrder {
		dup.SetColumn(name, r.columns[name])
	}
	dup.subtableID = r.subtableID
	dup.mgr = r.mgr
	return dup
}

// String returns a brief human-readable description of the row.
func (r *Row) String() string {
	label, _ := r.Label()
	return fmt.Sprintf("Row(label=%q, columns=%d, subtable=%d)", label, len(r.columns), r.subtableID)
}

// valuesEqual compares two column values, treating all numeric types as
// comparable by value.
func valuesEqual(a, b interface{}) bool {
	af, aok := cast.ToFloat64E(a)
	bf, bok := cast.ToFloat64E(b)
	if aok == nil && bok == nil {
		return af == bf
	}
	return a == b
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
