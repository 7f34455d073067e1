package filters

import (
	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func init() {
	datatable.RegisterFilter("ColumnCallback", newColumnCallback)
}

// ColumnCallback rewrites one column in place through a caller-supplied
// function, applied to every row including the summary. With the
// recursive flag it descends into sub-tables, bounded by the table's
// traversal depth ceiling.
type ColumnCallback struct {
	Column    string
	Callback  func(interface{}) interface{}
	Recursive bool
}

func newColumnCallback(params ...interface{}) (datatable.Filter, error) {
	if len(params) < 2 || len(params) > 3 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "ColumnCallback expects (column, callback[, recursive]), got %d params", len(params))
	}
	column, err := cast.ToStringE(params[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "ColumnCallback column")
	}
	callback, ok := params[1].(func(interface{}) interface{})
	if !ok {
		return nil, errors.New(errors.ErrorTypeValidation, "ColumnCallback callback must be func(interface{}) interface{}")
	}
	recursive := false
	if len(params) == 3 {
		recursive, err = cast.ToBoolE(params[2])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "ColumnCallback recursive")
		}
	}
	return &ColumnCallback{Column: column, Callback: callback, Recursive: recursive}, nil
}

// Apply implements datatable.Filter.
func (f *ColumnCallback) Apply(t *datatable.Table) error {
	return f.apply(t, 0)
}

func (f *ColumnCallback) apply(t *datatable.Table, depth int) error {
	if depth > t.MaxDepth() {
		return errors.Newf(errors.ErrorTypeRecursionLimit, "column callback exceeded max depth %d at table %d", t.MaxDepth(), t.ID())
	}
	for _, row := range t.RowsWithSummary() {
		if v, ok := row.Column(f.Column); ok {
			row.SetColumn(f.Column, f.Callback(v))
		}
		if !f.Recursive {
			continue
		}
		sub, err := row.Subtable()
		if err != nil {
			return err
		}
		if sub != nil {
			if err := f.apply(sub, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
