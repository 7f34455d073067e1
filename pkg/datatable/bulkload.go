package datatable

import (
	"github.com/ajitpratap0/quasar/pkg/errors"
	jsonpool "github.com/ajitpratap0/quasar/pkg/json"
)

// RowSpec is the nested bulk-load form: a declarative row with either
// an embedded sub-table (built recursively, registered fresh) or a raw
// sub-table id (preserved as-is, resolved lazily). A ready-made Row
// takes precedence over the declarative fields. Summary routes the
// entry to the table's summary row instead of AddRow.
type RowSpec struct {
	Row        *Row
	Columns    map[string]interface{}
	Metadata   map[string]interface{}
	Subtable   []RowSpec
	SubtableID int
	Summary    bool
}

// AddRowsFromSpecs bulk-loads rows from the nested spec form. Entries
// flagged Summary become the summary row; everything else goes through
// AddRow and respects the row cap. Loading is best-effort: rows added
// before a failing entry remain.
func (t *Table) AddRowsFromSpecs(specs []RowSpec) error {
	for _, spec := range specs {
		row, err := t.buildSpecRow(spec)
		if err != nil {
			return err
		}
		if spec.Summary {
			t.AddSummaryRow(row)
			continue
		}
		if _, err := t.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) buildSpecRow(spec RowSpec) (*Row, error) {
	row := spec.Row
	if row == nil {
		row = NewRowFromMap(spec.Columns)
		for k, v := range spec.Metadata {
			row.SetMetadata(k, v)
		}
	}
	switch {
	case len(spec.Subtable) > 0:
		sub := t.mgr.NewTable()
		if err := sub.SetAggregationOperations(t.aggregationOps); err != nil {
			return nil, err
		}
		if err := sub.AddRowsFromSpecs(spec.Subtable); err != nil {
			return nil, err
		}
		row.SetSubtable(sub)
	case spec.SubtableID != NoSubtable:
		row.SetSubtableID(spec.SubtableID, t.mgr)
	}
	return row, nil
}

// AddRowsFromSerialized loads one table blob (as produced per-table by
// Serialize) into this table: rows appended in blob order, summary row
// installed, sub-table ids preserved as-is for later resolution.
// Undecodable bytes fail with an unserialization error.
func (t *Table) AddRowsFromSerialized(blob []byte) error {
	wt, err := decodeBlob(blob)
	if err != nil {
		return err
	}
	for k, v := range wt.Metadata {
		t.SetMetadata(k, v)
	}
	for _, wr := range wt.Rows {
		if _, err := t.AddRow(decodeWireRow(wr, t.mgr)); err != nil {
			return err
		}
	}
	if wt.Summary != nil {
		t.AddSummaryRow(decodeWireRow(*wt.Summary, t.mgr))
	}
	return nil
}

// SimpleValueColumn is the column name scalar values land in when
// loading the simple label → scalar map form.
const SimpleValueColumn = "value"

// AddRowsFromSimpleMap loads the simple form: either label → scalar
// (one "value" column per row) or label → {column: value}. The shape
// is auto-detected and must be consistent across the whole map; rows
// are inserted in sorted label order with the label injected as the
// first column. Values the converter cannot losslessly interpret
// (nested maps or slices, mixed shapes) fail with a conversion error;
// rows added before the failure remain.
func (t *Table) AddRowsFromSimpleMap(data map[string]interface{}) error {
	labels := sortedKeys(data)

	scalarShape := false
	shapeKnown := false
	for _, label := range labels {
		value := data[label]

		columns, isMap := value.(map[string]interface{})
		if !shapeKnown {
			scalarShape = !isMap
			shapeKnown = true
		} else if scalarShape == isMap {
			return errors.Newf(errors.ErrorTypeConversion, "mixed scalar and column-map values in simple map (label %q)", label)
		}

		row := NewRow()
		row.SetColumn(LabelColumn, label)
		if isMap {
			for _, name := range sortedKeys(columns) {
				v := jsonpool.NormalizeNumber(columns[name])
				if !isScalar(v) {
					return errors.Newf(errors.ErrorTypeConversion, "column %q of label %q is not a scalar", name, label)
				}
				if name == LabelColumn {
					continue
				}
				row.SetColumn(name, v)
			}
		} else {
			v := jsonpool.NormalizeNumber(value)
			if !isScalar(v) {
				return errors.Newf(errors.ErrorTypeConversion, "value of label %q is not a scalar or column map", label)
			}
			row.SetColumn(SimpleValueColumn, v)
		}

		if _, err := t.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
