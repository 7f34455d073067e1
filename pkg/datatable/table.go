package datatable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/aggregation"
	"github.com/ajitpratap0/quasar/pkg/errors"
	"github.com/ajitpratap0/quasar/pkg/metrics"
)

// Table is an ordered collection of rows plus at most one summary row.
// It owns the label index, the row cap with summary folding, merge,
// sorting, and serialization. Tables are registered with a Manager at
// construction and addressed by id for the rest of their lifetime.
//
// Tables have no internal locking. A table and its reachable sub-table
// closure form one unit of mutual exclusion; callers that share tables
// across goroutines must serialize access externally.
type Table struct {
	id  int
	mgr *Manager

	order     []int
	rowsByID  map[int]*Row
	nextRowID int

	summary *Row

	// label index state machine: indexStale marks the index for a full
	// rebuild on the next lookup; continuousIndex, once armed by a
	// lookup, keeps the index patched incrementally on insert.
	labelIndex      map[string]int
	indexStale      bool
	continuousIndex bool

	maxAllowedRows int
	aggregationOps map[string]string

	metadata map[string]interface{}

	recursiveSort bool
	sortedBy      string

	maxDepth int

	queuedFilters []queuedFilter
}

func newTable(id int, mgr *Manager) *Table {
	maxDepth := mgr.cfg.Limits.MaxDepth
	return &Table{
		id:             id,
		mgr:            mgr,
		rowsByID:       make(map[int]*Row),
		nextRowID:      0,
		labelIndex:     make(map[string]int),
		aggregationOps: make(map[string]string),
		metadata:       make(map[string]interface{}),
		maxAllowedRows: mgr.cfg.Limits.MaxSubtableRows,
		maxDepth:       maxDepth,
	}
}

// ID returns the table's registry id.
func (t *Table) ID() int {
	return t.id
}

// Manager returns the registry this table belongs to.
func (t *Table) Manager() *Manager {
	return t.mgr
}

// AddRow appends a row, or folds it into the summary row once the row
// cap is reached. It returns the row that ended up holding the data:
// the row itself when appended, the summary row when folded.
//
// The first row to overflow seeds the summary row: its columns are
// copied and its label forced to the reserved summary label. Later
// overflow rows are summed into the summary with metadata copy off.
func (t *Table) AddRow(row *Row) (*Row, error) {
	if t.maxAllowedRows > 0 && t.RowCount() >= t.maxAllowedRows-1 {
		metrics.RowsAdded.WithLabelValues("folded").Inc()
		return t.foldIntoSummary(row)
	}
	t.appendRow(row)
	metrics.RowsAdded.WithLabelValues("appended").Inc()
	return row, nil
}

func (t *Table) appendRow(row *Row) {
	id := t.nextRowID
	t.nextRowID++
	t.order = append(t.order, id)
	t.rowsByID[id] = row
	if row.mgr == nil {
		row.mgr = t.mgr
	}

	if t.continuousIndex && !t.indexStale {
		if label, ok := row.Label(); ok {
			// last write wins on duplicate labels
			t.labelIndex[label] = id
		}
		return
	}
	t.indexStale = true
}

func (t *Table) foldIntoSummary(row *Row) (*Row, error) {
	if t.summary == nil {
		seed := row.copyColumnsOnly()
		seed.SetColumn(LabelColumn, SummaryLabel)
		t.summary = seed
		return t.summary, nil
	}
	if err := t.summary.SumRow(row, false, t.aggregationOps); err != nil {
		return nil, err
	}
	return t.summary, nil
}

// AddSummaryRow installs row as the summary row, forcing its label to
// the reserved summary label. An existing summary row is replaced.
func (t *Table) AddSummaryRow(row *Row) {
	row.SetColumn(LabelColumn, SummaryLabel)
	if row.mgr == nil {
		row.mgr = t.mgr
	}
	t.summary = row
}

// SummaryRow returns the summary row, or nil.
func (t *Table) SummaryRow() *Row {
	return t.summary
}

// Rows returns the data rows in insertion order, summary excluded.
func (t *Table) Rows() []*Row {
	rows := make([]*Row, 0, len(t.order))
	for _, id := range t.order {
		rows = append(rows, t.rowsByID[id])
	}
	return rows
}

// RowsWithSummary returns the data rows followed by the summary row when
// one exists.
func (t *Table) RowsWithSummary() []*Row {
	rows := t.Rows()
	if t.summary != nil {
		rows = append(rows, t.summary)
	}
	return rows
}

// RowIDs returns the row ids in order. Deletions leave gaps in the id
// sequence; ids are stable but not dense.
func (t *Table) RowIDs() []int {
	ids := make([]int, len(t.order))
	copy(ids, t.order)
	return ids
}

// FirstRow returns the first data row in order, or nil when empty.
func (t *Table) FirstRow() *Row {
	if len(t.order) == 0 {
		return nil
	}
	return t.rowsByID[t.order[0]]
}

// LastRow returns the last data row in order, or nil when empty.
func (t *Table) LastRow() *Row {
	if len(t.order) == 0 {
		return nil
	}
	return t.rowsByID[t.order[len(t.order)-1]]
}

// RowFromID returns the row with the given id, or nil. The reserved
// summary id resolves to the summary row.
func (t *Table) RowFromID(id int) *Row {
	if id == SummaryRowID {
		return t.summary
	}
	return t.rowsByID[id]
}

// RowFromLabel returns the row with the given label, or nil. The
// reserved summary label resolves to the summary row without touching
// the index. Any other lookup arms continuous index maintenance.
func (t *Table) RowFromLabel(label string) *Row {
	id, ok := t.RowIDFromLabel(label)
	if !ok {
		return nil
	}
	if id == SummaryRowID {
		return t.summary
	}
	return t.rowsByID[id]
}

// RowIDFromLabel returns the id of the row with the given label. The
// summary label maps to the reserved summary id when a summary row
// exists.
func (t *Table) RowIDFromLabel(label string) (int, bool) {
	if label == SummaryLabel {
		if t.summary == nil {
			return 0, false
		}
		return SummaryRowID, true
	}
	t.continuousIndex = true
	if t.indexStale {
		t.rebuildIndex()
	}
	id, ok := t.labelIndex[label]
	return id, ok
}

// rebuildIndex rescans all rows in order, last write winning on
// duplicate labels, and marks the index fresh.
func (t *Table) rebuildIndex() {
	t.labelIndex = make(map[string]int, len(t.order))
	for _, id := range t.order {
		if label, ok := t.rowsByID[id].Label(); ok {
			t.labelIndex[label] = id
		}
	}
	t.indexStale = false
}

// DeleteRow removes the row with the given id. Deleting the reserved
// summary id removes the summary row. Unknown ids fail with an
// unknown-row error.
func (t *Table) DeleteRow(id int) error {
	if id == SummaryRowID {
		if t.summary == nil {
			return errors.Newf(errors.ErrorTypeUnknownRow, "table %d has no summary row", t.id)
		}
		t.summary = nil
		return nil
	}
	if _, ok := t.rowsByID[id]; !ok {
		return errors.Newf(errors.ErrorTypeUnknownRow, "row %d not found in table %d", id, t.id)
	}
	delete(t.rowsByID, id)
	for i, rid := range t.order {
		if rid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.indexStale = true
	return nil
}

// DeleteRows removes the rows with the given ids. The first unknown id
// aborts with an unknown-row error; rows deleted before the failure
// stay deleted.
func (t *Table) DeleteRows(ids []int) error {
	for _, id := range ids {
		if err := t.DeleteRow(id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRowsOffset removes up to limit rows starting at the given
// position in insertion order. A limit < 0 removes everything from
// offset to the end.
func (t *Table) DeleteRowsOffset(offset, limit int) {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.order) {
		return
	}
	end := len(t.order)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	for _, id := range t.order[offset:end] {
		delete(t.rowsByID, id)
	}
	t.order = append(t.order[:offset], t.order[end:]...)
	t.indexStale = true
}

// DeleteColumn removes a column from every row including the summary.
func (t *Table) DeleteColumn(name string) {
	for _, row := range t.RowsWithSummary() {
		row.DeleteColumn(name)
	}
}

// RenameColumn renames a column in every row including the summary,
// recursing into sub-tables. Traversal is depth-guarded.
func (t *Table) RenameColumn(oldName, newName string) error {
	return t.renameColumnDepth(oldName, newName, 0)
}

func (t *Table) renameColumnDepth(oldName, newName string, depth int) error {
	if depth > t.maxDepth {
		return errors.Newf(errors.ErrorTypeRecursionLimit, "rename exceeded max depth %d at table %d", t.maxDepth, t.id)
	}
	for _, row := range t.RowsWithSummary() {
		row.RenameColumn(oldName, newName)
		sub, err := row.Subtable()
		if err != nil {
			return err
		}
		if sub != nil {
			if err := sub.renameColumnDepth(oldName, newName, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// ColumnNames returns the column names of the first row that has any,
// in that row's insertion order. Column discovery by convention: all
// rows of a table share a column set.
func (t *Table) ColumnNames() []string {
	for _, id := range t.order {
		if names := t.rowsByID[id].ColumnNames(); len(names) > 0 {
			return names
		}
	}
	if t.summary != nil {
		return t.summary.ColumnNames()
	}
	return nil
}

// ColumnValues projects one column across all rows in order, summary
// row last. Rows lacking the column contribute nil.
func (t *Table) ColumnValues(name string) []interface{} {
	values := make([]interface{}, 0, len(t.order)+1)
	for _, row := range t.RowsWithSummary() {
		v, _ := row.Column(name)
		values = append(values, v)
	}
	return values
}

// RowCount returns the number of rows, summary included.
func (t *Table) RowCount() int {
	n := len(t.order)
	if t.summary != nil {
		n++
	}
	return n
}

// RowCountWithoutSummary returns the number of data rows.
func (t *Table) RowCountWithoutSummary() int {
	return len(t.order)
}

// RowCountRecursive returns the row count of this table plus every
// reachable sub-table. Traversal is depth-guarded to turn cyclic
// sub-table graphs into an error rather than a hang.
func (t *Table) RowCountRecursive() (int, error) {
	return t.rowCountDepth(0)
}

func (t *Table) rowCountDepth(depth int) (int, error) {
	if depth > t.maxDepth {
		return 0, errors.Newf(errors.ErrorTypeRecursionLimit, "row count exceeded max depth %d at table %d", t.maxDepth, t.id)
	}
	n := t.RowCount()
	for _, row := range t.RowsWithSummary() {
		sub, err := row.Subtable()
		if err != nil {
			return 0, err
		}
		if sub == nil {
			continue
		}
		sn, err := sub.rowCountDepth(depth + 1)
		if err != nil {
			return 0, err
		}
		n += sn
	}
	return n, nil
}

// SetMetadata sets a table-level metadata value.
func (t *Table) SetMetadata(name string, value interface{}) {
	t.metadata[name] = value
}

// Metadata returns a table-level metadata value and whether it exists.
func (t *Table) Metadata(name string) (interface{}, bool) {
	v, ok := t.metadata[name]
	return v, ok
}

// DeleteMetadata removes a table-level metadata entry.
func (t *Table) DeleteMetadata(name string) bool {
	if _, ok := t.metadata[name]; !ok {
		return false
	}
	delete(t.metadata, name)
	return true
}

// MetadataMap returns a snapshot of the table-level metadata.
func (t *Table) MetadataMap() map[string]interface{} {
	md := make(map[string]interface{}, len(t.metadata))
	for k, v := range t.metadata {
		md[k] = v
	}
	return md
}

// SetMaxAllowedRows caps the data row count. Zero means unlimited.
// The cap applies to future inserts only; existing rows are not folded.
func (t *Table) SetMaxAllowedRows(n int) {
	t.maxAllowedRows = n
}

// MaxAllowedRows returns the row cap (zero means unlimited).
func (t *Table) MaxAllowedRows() int {
	return t.maxAllowedRows
}

// SetMaxDepth overrides the traversal depth ceiling for this table.
func (t *Table) SetMaxDepth(depth int) error {
	if depth <= 0 {
		return errors.Newf(errors.ErrorTypeValidation, "max depth must be positive, got %d", depth)
	}
	t.maxDepth = depth
	return nil
}

// MaxDepth returns the traversal depth ceiling.
func (t *Table) MaxDepth() int {
	return t.maxDepth
}

// SetAggregationOperation sets the operator used for one column when
// rows are summed. The operator must be registered.
func (t *Table) SetAggregationOperation(column, op string) error {
	if !aggregation.Has(op) {
		return errors.Newf(errors.ErrorTypeValidation, "unknown aggregation operation %q", op)
	}
	t.aggregationOps[column] = op
	return nil
}

// SetAggregationOperations sets operators for several columns at once.
func (t *Table) SetAggregationOperations(ops map[string]string) error {
	for column, op := range ops {
		if err := t.SetAggregationOperation(column, op); err != nil {
			return err
		}
	}
	return nil
}

// AggregationOperations returns a snapshot of the per-column operators.
func (t *Table) AggregationOperations() map[string]string {
	ops := make(map[string]string, len(t.aggregationOps))
	for k, v := range t.aggregationOps {
		ops[k] = v
	}
	return ops
}

// EnableRecursiveSort makes SortByColumn propagate into sub-tables.
func (t *Table) EnableRecursiveSort() {
	t.recursiveSort = true
}

// SortedBy returns the column the table was last sorted by, if any.
func (t *Table) SortedBy() string {
	return t.sortedBy
}

// SortByColumn reorders the data rows by a column, descending when desc
// is set. Missing or non-numeric values sort below numeric ones; string
// columns compare lexically. With recursive sort enabled the same sort
// is applied to every sub-table, depth-guarded.
func (t *Table) SortByColumn(column string, desc bool) error {
	return t.sortByColumnDepth(column, desc, 0)
}

func (t *Table) sortByColumnDepth(column string, desc bool, depth int) error {
	if depth > t.maxDepth {
		return errors.Newf(errors.ErrorTypeRecursionLimit, "sort exceeded max depth %d at table %d", t.maxDepth, t.id)
	}
	sort.SliceStable(t.order, func(i, j int) bool {
		a, _ := t.rowsByID[t.order[i]].Column(column)
		b, _ := t.rowsByID[t.order[j]].Column(column)
		less := valueLess(a, b)
		if desc {
			return valueLess(b, a)
		}
		return less
	})
	t.sortedBy = column
	t.indexStale = true

	if !t.recursiveSort {
		return nil
	}
	for _, row := range t.RowsWithSummary() {
		sub, err := row.Subtable()
		if err != nil {
			return err
		}
		if sub == nil {
			continue
		}
		sub.recursiveSort = true
		if err := sub.sortByColumnDepth(column, desc, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Sort reorders the data rows with a caller-supplied comparison.
func (t *Table) Sort(less func(a, b *Row) bool) {
	sort.SliceStable(t.order, func(i, j int) bool {
		return less(t.rowsByID[t.order[i]], t.rowsByID[t.order[j]])
	})
	t.sortedBy = ""
	t.indexStale = true
}

// AddDataTable merges other into this table. Rows whose label already
// exists here are summed column-wise with metadata copy on, and their
// sub-tables merged recursively with the same operators; rows with new
// labels are deep-copied in. Other's summary row is summed into this
// table's summary row (or copied in when absent).
func (t *Table) AddDataTable(other *Table) error {
	return t.addDataTableDepth(other, 0)
}

func (t *Table) addDataTableDepth(other *Table, depth int) error {
	if depth > t.maxDepth {
		return errors.Newf(errors.ErrorTypeRecursionLimit, "merge exceeded max depth %d at table %d", t.maxDepth, t.id)
	}
	for _, incoming := range other.RowsWithSummary() {
		label, hasLabel := incoming.Label()

		var existing *Row
		if hasLabel {
			existing = t.RowFromLabel(label)
		}

		if existing == nil {
			copied, err := incoming.Copy()
			if err != nil {
				return err
			}
			if hasLabel && label == SummaryLabel {
				t.AddSummaryRow(copied)
				continue
			}
			if _, err := t.AddRow(copied); err != nil {
				return err
			}
			continue
		}

		if err := existing.SumRow(incoming, true, t.aggregationOps); err != nil {
			return err
		}
		if incoming.HasSubtable() {
			incomingSub, err := incoming.Subtable()
			if err != nil {
				return err
			}
			ownSub, err := existing.Subtable()
			if err != nil {
				return err
			}
			if ownSub == nil {
				ownSub = t.mgr.NewTable()
				if err := ownSub.SetAggregationOperations(t.aggregationOps); err != nil {
					return err
				}
				existing.SetSubtable(ownSub)
			}
			if err := ownSub.addDataTableDepth(incomingSub, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// Truncate keeps the first limit-1 rows and folds the remainder into
// the summary row using plain numeric addition. When sortColumn is
// non-empty the table is first sorted descending by that column, so the
// kept rows are the largest ones. Bounded serialized size with an
// accurate aggregate of what was cut.
func (t *Table) Truncate(limit int, sortColumn string) error {
	if limit <= 0 || len(t.order) < limit {
		return nil
	}
	if sortColumn != "" {
		if err := t.SortByColumn(sortColumn, true); err != nil {
			return err
		}
	}

	keep := limit - 1
	excess := t.order[keep:]
	for _, id := range excess {
		row := t.rowsByID[id]
		if t.summary == nil {
			seed := row.copyColumnsOnly()
			seed.SetColumn(LabelColumn, SummaryLabel)
			t.summary = seed
		} else {
			if err := t.summary.SumRow(row, false, nil); err != nil {
				return err
			}
		}
		delete(t.rowsByID, id)
	}
	t.order = t.order[:keep:keep]
	t.indexStale = true
	return nil
}

// WalkResult is the outcome of a path descent: the row and table
// reached, plus how many path segments matched. An empty path matches
// the starting table itself with no row.
type WalkResult struct {
	Row     *Row
	Table   *Table
	Matched int
}

// WalkPath descends the tree level by level, matching each path segment
// against row labels and following sub-table references. On a miss it
// returns the deepest match reached with Row nil past that point.
func (t *Table) WalkPath(path []string) (WalkResult, error) {
	return t.walkPath(path, nil, 0)
}

// WalkPathCreate descends like WalkPath but creates missing rows with
// the given default columns, and missing sub-tables carrying this
// table's aggregation operators and subtableRowCap as their row cap.
// When a created row is folded into a full table's summary row, the
// result carries that summary row with its metadata cleared, and the
// descent stops there.
func (t *Table) WalkPathCreate(path []string, defaults map[string]interface{}, subtableRowCap int) (WalkResult, error) {
	return t.walkPath(path, &walkCreate{defaults: defaults, subtableRowCap: subtableRowCap}, 0)
}

type walkCreate struct {
	defaults       map[string]interface{}
	subtableRowCap int
}

func (t *Table) walkPath(path []string, create *walkCreate, depth int) (WalkResult, error) {
	if depth > t.maxDepth {
		return WalkResult{}, errors.Newf(errors.ErrorTypeRecursionLimit, "walk exceeded max depth %d at table %d", t.maxDepth, t.id)
	}
	if len(path) == 0 {
		return WalkResult{Table: t, Matched: 0}, nil
	}

	current := t
	for i, label := range path {
		row := current.RowFromLabel(label)
		if row == nil {
			if create == nil {
				return WalkResult{Table: current, Matched: i}, nil
			}
			fresh := NewRow()
			fresh.SetColumn(LabelColumn, label)
			for _, name := range sortedKeys(create.defaults) {
				fresh.SetColumn(name, create.defaults[name])
			}
			added, err := current.AddRow(fresh)
			if err != nil {
				return WalkResult{}, err
			}
			if added != fresh {
				// folded into the summary row: partial success
				added.clearMetadata()
				return WalkResult{Row: added, Table: current, Matched: i + 1}, nil
			}
			row = added
		}

		if i == len(path)-1 {
			return WalkResult{Row: row, Table: current, Matched: i + 1}, nil
		}

		sub, err := row.Subtable()
		if err != nil {
			return WalkResult{}, err
		}
		if sub == nil {
			if create == nil {
				return WalkResult{Row: row, Table: current, Matched: i + 1}, nil
			}
			sub = current.mgr.NewTable()
			if err := sub.SetAggregationOperations(current.aggregationOps); err != nil {
				return WalkResult{}, err
			}
			if create.subtableRowCap > 0 {
				sub.SetMaxAllowedRows(create.subtableRowCap)
			}
			row.SetSubtable(sub)
		}
		if depth+i+1 > t.maxDepth {
			return WalkResult{}, errors.Newf(errors.ErrorTypeRecursionLimit, "walk exceeded max depth %d at table %d", t.maxDepth, sub.id)
		}
		current = sub
	}
	// unreachable: the loop returns on the last segment
	return WalkResult{}, errors.New(errors.ErrorTypeInternal, "walk fell through")
}

// MergeSubtablesOptions controls sub-table flattening.
type MergeSubtablesOptions struct {
	// PrefixLabels rewrites each flattened row's label to
	// "<parent label><Separator><label>".
	PrefixLabels bool
	// Separator between parent and child labels (default " - ").
	Separator string
	// ParentLabelMetadata, when non-empty, records the parent's label
	// under this metadata key instead of rewriting the label.
	ParentLabelMetadata string
}

// MergeSubtables returns a new table holding the union of every row's
// sub-table rows. Summary rows from different sub-tables are combined
// into one using this table's aggregation operators.
func (t *Table) MergeSubtables(opts MergeSubtablesOptions) (*Table, error) {
	sep := opts.Separator
	if sep == "" {
		sep = " - "
	}
	merged := t.mgr.NewTable()
	if err := merged.SetAggregationOperations(t.aggregationOps); err != nil {
		return nil, err
	}

	for _, parent := range t.Rows() {
		sub, err := parent.Subtable()
		if err != nil {
			return nil, err
		}
		if sub == nil {
			continue
		}
		parentLabel, _ := parent.Label()
		for _, row := range sub.Rows() {
			copied, err := row.Copy()
			if err != nil {
				return nil, err
			}
			if opts.PrefixLabels {
				if label, ok := copied.Label(); ok {
					copied.SetColumn(LabelColumn, parentLabel+sep+label)
				}
			}
			if opts.ParentLabelMetadata != "" {
				copied.SetMetadata(opts.ParentLabelMetadata, parentLabel)
			}
			if _, err := merged.AddRow(copied); err != nil {
				return nil, err
			}
		}
		if sum := sub.SummaryRow(); sum != nil {
			if merged.summary == nil {
				copied, err := sum.Copy()
				if err != nil {
					return nil, err
				}
				merged.AddSummaryRow(copied)
			} else if err := merged.summary.SumRow(sum, true, merged.aggregationOps); err != nil {
				return nil, err
			}
		}
	}
	return merged, nil
}

// Copy returns a deep copy of the table registered as a fresh entry,
// sub-tables copied recursively into fresh entries as well. The copy
// is depth-guarded.
func (t *Table) Copy() (*Table, error) {
	return t.copyDepth(0)
}

func (t *Table) copyDepth(depth int) (*Table, error) {
	if depth > t.maxDepth {
		return nil, errors.Newf(errors.ErrorTypeRecursionLimit, "copy exceeded max depth %d at table %d", t.maxDepth, t.id)
	}
	dup := t.mgr.NewTable()
	dup.maxAllowedRows = t.maxAllowedRows
	dup.maxDepth = t.maxDepth
	dup.recursiveSort = t.recursiveSort
	dup.sortedBy = t.sortedBy
	for k, v := range t.aggregationOps {
		dup.aggregationOps[k] = v
	}
	for k, v := range t.metadata {
		dup.metadata[k] = v
	}
	for _, row := range t.Rows() {
		copied, err := row.copyDepth(depth)
		if err != nil {
			return nil, err
		}
		copied.mgr = dup.mgr
		dup.appendRow(copied)
	}
	if t.summary != nil {
		copied, err := t.summary.copyDepth(depth)
		if err != nil {
			return nil, err
		}
		dup.AddSummaryRow(copied)
	}
	return dup, nil
}

// Equal reports whether two tables have the same row count and, for
// every row here, a same-label row there that is row-equal. Summary
// rows are compared likewise. Sub-table content is not compared; used
// by tests.
func (t *Table) Equal(other *Table) bool {
	if other == nil {
		return false
	}
	if t.RowCountWithoutSummary() != other.RowCountWithoutSummary() {
		return false
	}
	if (t.summary == nil) != (other.summary == nil) {
		return false
	}
	if t.summary != nil && !t.summary.Equal(other.summary) {
		return false
	}
	for _, row := range t.Rows() {
		label, ok := row.Label()
		if !ok {
			return false
		}
		match := other.RowFromLabel(label)
		if match == nil || !row.Equal(match) {
			return false
		}
	}
	return true
}

// Release deregisters the table, leaving its id resolving to a
// deletion error. Sub-tables are independently owned and NOT released;
// the registry's lifecycle owner cleans those up.
func (t *Table) Release() {
	t.mgr.MarkDeleted(t.id)
}

// String returns a brief human-readable description of the table.
func (t *Table) String() string {
	return fmt.Sprintf("Table(id=%d, rows=%d, summary=%t)", t.id, len(t.order), t.summary != nil)
}

func toFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("nil value")
	}
	return cast.ToFloat64E(v)
}

// valueLess orders column values for sorting: numerics by value,
// strings lexically, with non-numeric, non-string values (and missing
// columns) ordered last.
func valueLess(a, b interface{}) bool {
	af, aerr := toFloat(a)
	bf, berr := toFloat(b)
	switch {
	case aerr == nil && berr == nil:
		return af < bf
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.ToLower(as) < strings.ToLower(bs)
	}
	return aok && !bok
}
