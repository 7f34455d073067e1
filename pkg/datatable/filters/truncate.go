package filters

import (
	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func init() {
	datatable.RegisterFilter("Truncate", newTruncate)
}

// Truncate caps the table at keepRows total rows, folding the excess
// into the summary row. With a sort column the table is sorted
// descending by it first, so the largest rows survive. An optional
// label replaces the reserved summary label on the folded row, for
// display ("Others" and the like).
type Truncate struct {
	KeepRows   int
	SortColumn string
	Label      string
}

func newTruncate(params ...interface{}) (datatable.Filter, error) {
	if len(params) < 1 || len(params) > 3 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "Truncate expects (keepRows[, sortColumn[, label]]), got %d params", len(params))
	}
	keep, err := cast.ToIntE(params[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Truncate keepRows")
	}
	if keep <= 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "Truncate keepRows must be positive, got %d", keep)
	}
	f := &Truncate{KeepRows: keep}
	if len(params) >= 2 {
		if f.SortColumn, err = cast.ToStringE(params[1]); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Truncate sortColumn")
		}
	}
	if len(params) == 3 {
		if f.Label, err = cast.ToStringE(params[2]); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Truncate label")
		}
	}
	return f, nil
}

// Apply implements datatable.Filter.
func (f *Truncate) Apply(t *datatable.Table) error {
	if err := t.Truncate(f.KeepRows, f.SortColumn); err != nil {
		return err
	}
	if f.Label != "" {
		if sum := t.SummaryRow(); sum != nil {
			sum.SetColumn(datatable.LabelColumn, f.Label)
		}
	}
	return nil
}
