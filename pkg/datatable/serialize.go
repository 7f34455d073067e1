package datatable

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/quasar/pkg/errors"
	jsonpool "github.com/ajitpratap0/quasar/pkg/json"
	"github.com/ajitpratap0/quasar/pkg/logger"
	"github.com/ajitpratap0/quasar/pkg/metrics"
)

// RootBlobKey is the key the root table's blob is stored under,
// regardless of the root's true registry id. Storage and retrieval
// code depends on this.
const RootBlobKey = 0

// SerializeOptions controls truncation applied per table before its
// blob is encoded. Zero values disable truncation.
type SerializeOptions struct {
	// MaxRows caps the root table's total row count (summary included).
	MaxRows int
	// MaxSubtableRows caps every non-root table's total row count.
	MaxSubtableRows int
	// SortColumn, when set, sorts each truncated table descending by
	// this column first so the largest rows survive.
	SortColumn string
}

// wire form: one table's own rows and summary only. Column order is
// explicit; sub-tables are referenced by registry id, never embedded.
type wireColumn struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

type wireRow struct {
	Columns  []wireColumn           `json:"columns"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Subtable int                    `json:"subtable,omitempty"`
}

type wireTable struct {
	Rows     []wireRow              `json:"rows"`
	Summary  *wireRow               `json:"summary,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Serialize flattens the table and every reachable sub-table into a
// mapping from table id to encoded blob. Sub-tables are visited
// depth-first, each keyed by its registry id; the root is always keyed
// RootBlobKey. Truncation options apply per table before encoding.
// Traversal depth beyond the configured maximum fails with a
// recursion-limit error.
//
// Serialization mutates: truncation folds rows, and per-row resolved
// sub-table caches are cleared after each blob is produced.
func (t *Table) Serialize(opts SerializeOptions) (map[int][]byte, error) {
	timer := metrics.NewTimer("serialize")
	blobs := make(map[int][]byte)
	if err := t.serializeDepth(opts, blobs, 0); err != nil {
		return nil, err
	}
	metrics.Serializations.Inc()
	metrics.SerializationLatency.Observe(float64(timer.Stop().Nanoseconds()))
	logger.Debug("table serialized",
		zap.Int("table_id", t.id),
		zap.Int("blobs", len(blobs)),
	)
	return blobs, nil
}

func (t *Table) serializeDepth(opts SerializeOptions, blobs map[int][]byte, depth int) error {
	if depth > t.maxDepth {
		return errors.Newf(errors.ErrorTypeRecursionLimit, "serialize exceeded max depth %d at table %d", t.maxDepth, t.id)
	}

	limit := opts.MaxRows
	if depth > 0 {
		limit = opts.MaxSubtableRows
	}
	if limit > 0 {
		if err := t.Truncate(limit, opts.SortColumn); err != nil {
			return err
		}
	}

	for _, row := range t.RowsWithSummary() {
		sub, err := row.Subtable()
		if err != nil {
			return err
		}
		if sub == nil {
			continue
		}
		if err := sub.serializeDepth(opts, blobs, depth+1); err != nil {
			return err
		}
	}

	blob, err := t.encodeBlob()
	if err != nil {
		return err
	}
	key := t.id
	if depth == 0 {
		key = RootBlobKey
	}
	blobs[key] = blob

	for _, row := range t.RowsWithSummary() {
		row.clearSubtableCache()
	}
	return nil
}

func (t *Table) encodeBlob() ([]byte, error) {
	wt := wireTable{Rows: make([]wireRow, 0, len(t.order))}
	for _, row := range t.Rows() {
		wt.Rows = append(wt.Rows, encodeWireRow(row))
	}
	if t.summary != nil {
		wr := encodeWireRow(t.summary)
		wt.Summary = &wr
	}
	if len(t.metadata) > 0 {
		wt.Metadata = t.metadata
	}
	data, err := jsonpool.Marshal(wt)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "encode table blob")
	}
	return data, nil
}

func encodeWireRow(row *Row) wireRow {
	wr := wireRow{
		Columns:  make([]wireColumn, 0, len(row.columnOrder)),
		Subtable: row.subtableID,
	}
	for _, name := range row.columnOrder {
		wr.Columns = append(wr.Columns, wireColumn{Name: name, Value: row.columns[name]})
	}
	if len(row.metadata) > 0 {
		wr.Metadata = row.metadata
	}
	return wr
}

// decodeBlob parses one table blob. Numbers come back as json.Number
// and are normalized to int64 or float64.
func decodeBlob(blob []byte) (*wireTable, error) {
	var wt wireTable
	if err := jsonpool.UnmarshalUseNumber(blob, &wt); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnserialization, "decode table blob")
	}
	for i := range wt.Rows {
		normalizeWireRow(&wt.Rows[i])
	}
	if wt.Summary != nil {
		normalizeWireRow(wt.Summary)
	}
	for k, v := range wt.Metadata {
		wt.Metadata[k] = jsonpool.NormalizeNumber(v)
	}
	return &wt, nil
}

func normalizeWireRow(wr *wireRow) {
	for i := range wr.Columns {
		wr.Columns[i].Value = jsonpool.NormalizeNumber(wr.Columns[i].Value)
	}
	for k, v := range wr.Metadata {
		wr.Metadata[k] = jsonpool.NormalizeNumber(v)
	}
}

func decodeWireRow(wr wireRow, mgr *Manager) *Row {
	row := NewRow()
	for _, col := range wr.Columns {
		row.SetColumn(col.Name, col.Value)
	}
	for k, v := range wr.Metadata {
		row.SetMetadata(k, v)
	}
	if wr.Subtable != NoSubtable {
		row.SetSubtableID(wr.Subtable, mgr)
	}
	return row
}

// FromSerialized reconstructs a table forest from a flat blob mapping
// produced by Serialize. The root is read from key RootBlobKey; every
// sub-table reference is rewired to a freshly registered table. A
// referenced sub-table whose blob is missing from the mapping has the
// reference cleared — partial loads are how callers materialize only
// the branches they stored.
func FromSerialized(mgr *Manager, blobs map[int][]byte) (*Table, error) {
	root, ok := blobs[RootBlobKey]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeUnserialization, "blob mapping has no root entry (key %d)", RootBlobKey)
	}
	return fromSerializedDepth(mgr, root, blobs, 0)
}

func fromSerializedDepth(mgr *Manager, blob []byte, blobs map[int][]byte, depth int) (*Table, error) {
	if depth > mgr.cfg.Limits.MaxDepth {
		return nil, errors.Newf(errors.ErrorTypeRecursionLimit, "deserialize exceeded max depth %d", mgr.cfg.Limits.MaxDepth)
	}
	wt, err := decodeBlob(blob)
	if err != nil {
		return nil, err
	}

	t := mgr.NewTable()
	for k, v := range wt.Metadata {
		t.SetMetadata(k, v)
	}
	install := func(wr wireRow, summary bool) error {
		row := decodeWireRow(wr, mgr)
		if wr.Subtable != NoSubtable {
			subBlob, ok := blobs[wr.Subtable]
			if !ok {
				row.RemoveSubtable()
			} else {
				sub, err := fromSerializedDepth(mgr, subBlob, blobs, depth+1)
				if err != nil {
					return err
				}
				row.SetSubtable(sub)
			}
		}
		if summary {
			t.AddSummaryRow(row)
			return nil
		}
		t.appendRow(row)
		return nil
	}
	for _, wr := range wt.Rows {
		if err := install(wr, false); err != nil {
			return nil, err
		}
	}
	if wt.Summary != nil {
		if err := install(*wt.Summary, true); err != nil {
			return nil, err
		}
	}
	return t, nil
}
