package filters

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func init() {
	datatable.RegisterFilter("Sort", newSort)
}

// Sort reorders a table's rows by a column. Order is "asc" or "desc"
// (default desc, the common report ordering). Descends into sub-tables
// when the table has recursive sort enabled.
type Sort struct {
	Column string
	Desc   bool
}

func newSort(params ...interface{}) (datatable.Filter, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "Sort expects (column[, order]), got %d params", len(params))
	}
	column, err := cast.ToStringE(params[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Sort column")
	}
	desc := true
	if len(params) == 2 {
		order, err := cast.ToStringE(params[1])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Sort order")
		}
		switch strings.ToLower(order) {
		case "asc":
			desc = false
		case "desc":
			desc = true
		default:
			return nil, errors.Newf(errors.ErrorTypeValidation, "Sort order must be asc or desc, got %q", order)
		}
	}
	return &Sort{Column: column, Desc: desc}, nil
}

// Apply implements datatable.Filter.
func (f *Sort) Apply(t *datatable.Table) error {
	return t.SortByColumn(f.Column, f.Desc)
}
