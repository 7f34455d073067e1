package filters

import (
	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func init() {
	datatable.RegisterFilter("ExcludeLowValue", newExcludeLowValue)
}

// ExcludeLowValue deletes rows whose column value is below a minimum.
// Rows lacking the column, or holding a non-numeric value, are deleted
// too. The summary row is untouched.
type ExcludeLowValue struct {
	Column  string
	Minimum float64
}

func newExcludeLowValue(params ...interface{}) (datatable.Filter, error) {
	if len(params) != 2 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "ExcludeLowValue expects (column, minimum), got %d params", len(params))
	}
	column, err := cast.ToStringE(params[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "ExcludeLowValue column")
	}
	minimum, err := cast.ToFloat64E(params[1])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "ExcludeLowValue minimum")
	}
	return &ExcludeLowValue{Column: column, Minimum: minimum}, nil
}

// Apply implements datatable.Filter.
func (f *ExcludeLowValue) Apply(t *datatable.Table) error {
	var doomed []int
	for _, id := range t.RowIDs() {
		v, ok := t.RowFromID(id).Column(f.Column)
		if !ok {
			doomed = append(doomed, id)
			continue
		}
		fv, err := cast.ToFloat64E(v)
		if err != nil || fv < f.Minimum {
			doomed = append(doomed, id)
		}
	}
	return t.DeleteRows(doomed)
}
