package filters

import (
	"regexp"

	"github.com/spf13/cast"

	"github.com/ajitpratap0/quasar/pkg/datatable"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func init() {
	datatable.RegisterFilter("Pattern", newPattern)
}

// Pattern keeps rows whose column value matches a regular expression
// (or the non-matching rows when inverted). Rows lacking the column
// never match. The summary row is untouched.
type Pattern struct {
	Column string
	Regexp *regexp.Regexp
	Invert bool
}

func newPattern(params ...interface{}) (datatable.Filter, error) {
	if len(params) < 2 || len(params) > 3 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "Pattern expects (column, regexp[, invert]), got %d params", len(params))
	}
	column, err := cast.ToStringE(params[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Pattern column")
	}
	expr, err := cast.ToStringE(params[1])
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Pattern regexp")
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Pattern regexp")
	}
	invert := false
	if len(params) == 3 {
		invert, err = cast.ToBoolE(params[2])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "Pattern invert")
		}
	}
	return &Pattern{Column: column, Regexp: re, Invert: invert}, nil
}

// Apply implements datatable.Filter.
func (f *Pattern) Apply(t *datatable.Table) error {
	var doomed []int
	for _, id := range t.RowIDs() {
		row := t.RowFromID(id)
		v, ok := row.Column(f.Column)
		matched := ok && f.Regexp.MatchString(cast.ToString(v))
		if matched == f.Invert {
			doomed = append(doomed, id)
		}
	}
	return t.DeleteRows(doomed)
}
