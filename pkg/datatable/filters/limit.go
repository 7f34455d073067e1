package filters

import (
	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func init() {
	datatable.RegisterFilter("Limit", newLimit)
}

// Limit keeps the row window [offset, offset+count) and deletes
// everything else. A negative count keeps all rows from offset on.
// The summary row is untouched.
type Limit struct {
	Offset int
	Count  int
}

func newLimit(params ...interface{}) (datatable.Filter, error) {
	if len(params) != 2 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "Limit expects (offset, count), got %d params", len(params))
	}
	offset, err := cast.ToIntE(params[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Limit offset")
	}
	count, err := cast.ToIntE(params[1])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Limit count")
	}
	if offset < 0 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "Limit offset must be >= 0, got %d", offset)
	}
	return &Limit{Offset: offset, Count: count}, nil
}

// Apply implements datatable.Filter.
func (f *Limit) Apply(t *datatable.Table) error {
	if f.Count >= 0 {
		t.DeleteRowsOffset(f.Offset+f.Count, -1)
	}
	t.DeleteRowsOffset(0, f.Offset)
	return nil
}
