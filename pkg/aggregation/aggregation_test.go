package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quasar/pkg/errors"
)

func TestSumPreservesIntegers(t *testing.T) {
	got, err := Apply(Sum, int64(5), int64(7))
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)

	got, err = Apply(Sum, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)
}

func TestSumMixedTypes(t *testing.T) {
	got, err := Apply(Sum, int64(5), 2.5)
	require.NoError(t, err)
	assert.Equal(t, 7.5, got)

	// Non-numeric existing is treated as zero
	got, err = Apply(Sum, "n/a", int64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	// Non-numeric incoming leaves existing untouched
	got, err = Apply(Sum, int64(3), "n/a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	// Nil existing counts as missing
	got, err = Apply(Sum, nil, int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestSumNumericStrings(t *testing.T) {
	got, err := Apply(Sum, "5", "7")
	require.NoError(t, err)
	assert.Equal(t, float64(12), got)
}

func TestMaxMin(t *testing.T) {
	got, err := Apply(Max, int64(5), int64(9))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)

	got, err = Apply(Max, int64(9), int64(5))
	require.NoError(t, err)
	assert.Equal(t, int64(9), got)

	got, err = Apply(Min, int64(5), int64(9))
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	// Missing side loses
	got, err = Apply(Max, nil, int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	got, err = Apply(Min, int64(2), "n/a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestFirstLastSkip(t *testing.T) {
	got, err := Apply(First, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	got, err = Apply(Last, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	got, err = Apply(Skip, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestDefaultOperatorIsSum(t *testing.T) {
	got, err := Apply("", int64(1), int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
}

func TestUnknownOperator(t *testing.T) {
	_, err := Apply("median", 1, 2)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestCustomOperator(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("concat", func(existing, incoming interface{}) interface{} {
		return castString(existing) + "," + castString(incoming)
	}))

	fn, err := r.Resolve("concat")
	require.NoError(t, err)
	assert.Equal(t, "a,b", fn("a", "b"))

	// Double registration is a config error
	err = r.Register("concat", func(existing, _ interface{}) interface{} { return existing })
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestHas(t *testing.T) {
	assert.True(t, Has(Sum))
	assert.True(t, Has(Max))
	assert.False(t, Has("nope"))
}

func castString(v interface{}) string {
	s, _ := v.(string)
	return s
}
