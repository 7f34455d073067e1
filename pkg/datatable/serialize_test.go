package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quasar/pkg/errors"
)

func TestSerializeRootKeyedZero(t *testing.T) {
	mgr := newTestManager()
	// burn a few ids so the root's registry id is clearly non-zero
	for i := 0; i < 5; i++ {
		mgr.NewTable()
	}
	table := mgr.NewTable()
	require.NotEqual(t, RootBlobKey, table.ID())
	_, err := table.AddRow(labeledRow("a", int64(1)))
	require.NoError(t, err)

	blobs, err := table.Serialize(SerializeOptions{})
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	_, hasRoot := blobs[RootBlobKey]
	assert.True(t, hasRoot, "root blob must be keyed %d, not the registry id", RootBlobKey)
}

func TestSerializeSubtableKeyedByID(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	row := labeledRow("engine", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("kw", int64(2)))
	require.NoError(t, err)
	row.SetSubtable(sub)
	_, err = table.AddRow(row)
	require.NoError(t, err)

	blobs, err := table.Serialize(SerializeOptions{})
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	assert.Contains(t, blobs, RootBlobKey)
	assert.Contains(t, blobs, sub.ID())
}

func TestSerializeRoundTrip(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	table.SetMetadata("period", "day")

	row := labeledRow("engine", int64(10))
	row.SetMetadata("url", "http://example.org")
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("kw", 2.5))
	require.NoError(t, err)
	row.SetSubtable(sub)
	_, err = table.AddRow(row)
	require.NoError(t, err)
	_, err = table.AddRow(labeledRow("direct", int64(3)))
	require.NoError(t, err)
	sum := NewRow()
	sum.SetColumn("visits", int64(99))
	table.AddSummaryRow(sum)

	blobs, err := table.Serialize(SerializeOptions{})
	require.NoError(t, err)

	loaded, err := FromSerialized(mgr, blobs)
	require.NoError(t, err)
	assert.NotEqual(t, table.ID(), loaded.ID(), "fresh registry ids on load")
	assert.True(t, table.Equal(loaded))

	meta, ok := loaded.Metadata("period")
	require.True(t, ok)
	assert.Equal(t, "day", meta)

	engine := loaded.RowFromLabel("engine")
	require.NotNil(t, engine)
	url, ok := engine.Metadata("url")
	require.True(t, ok)
	assert.Equal(t, "http://example.org", url)

	loadedSub, err := engine.Subtable()
	require.NoError(t, err)
	require.NotNil(t, loadedSub)
	assert.True(t, sub.Equal(loadedSub))
}

func TestSerializeNumberNormalization(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	_, err := table.AddRow(labeledRow("a", int64(42)))
	require.NoError(t, err)
	_, err = table.AddRow(labeledRow("b", 2.5))
	require.NoError(t, err)

	blobs, err := table.Serialize(SerializeOptions{})
	require.NoError(t, err)
	loaded, err := FromSerialized(mgr, blobs)
	require.NoError(t, err)

	// integral values come back as int64, fractional as float64
	assert.Equal(t, int64(42), columnOf(t, loaded.RowFromLabel("a"), "visits"))
	assert.Equal(t, 2.5, columnOf(t, loaded.RowFromLabel("b"), "visits"))
}

func TestSerializeTruncatesPerTable(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	for _, r := range []struct {
		label  string
		visits int64
	}{{"a", 10}, {"b", 2}, {"c", 30}} {
		_, err := table.AddRow(labeledRow(r.label, r.visits))
		require.NoError(t, err)
	}

	blobs, err := table.Serialize(SerializeOptions{MaxRows: 2, SortColumn: "visits"})
	require.NoError(t, err)

	loaded, err := FromSerialized(mgr, blobs)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.RowCountWithoutSummary())
	assert.Equal(t, "c", mustLabel(t, loaded.FirstRow()))
	require.NotNil(t, loaded.SummaryRow())
	assert.Equal(t, int64(12), columnOf(t, loaded.SummaryRow(), "visits"))
}

func TestSerializeClearsSubtableCaches(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	row := labeledRow("p", int64(1))
	sub := mgr.NewTable()
	row.SetSubtable(sub)
	_, err := table.AddRow(row)
	require.NoError(t, err)
	require.NotNil(t, row.subtableCache)

	_, err = table.Serialize(SerializeOptions{})
	require.NoError(t, err)
	assert.Nil(t, row.subtableCache)
	assert.Equal(t, sub.ID(), row.SubtableID(), "reference survives, cache does not")
}

func TestFromSerializedMissingRoot(t *testing.T) {
	_, err := FromSerialized(newTestManager(), map[int][]byte{7: []byte(`{"rows":[]}`)})
	require.Error(t, err)
	assert.True(t, errors.IsUnserialization(err))
}

func TestFromSerializedMissingSubBlobClearsReference(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	row := labeledRow("p", int64(1))
	sub := mgr.NewTable()
	row.SetSubtable(sub)
	_, err := table.AddRow(row)
	require.NoError(t, err)

	blobs, err := table.Serialize(SerializeOptions{})
	require.NoError(t, err)
	delete(blobs, sub.ID())

	loaded, err := FromSerialized(mgr, blobs)
	require.NoError(t, err)
	assert.False(t, loaded.RowFromLabel("p").HasSubtable(), "partial load clears the dangling reference")
}

func TestFromSerializedBadBlob(t *testing.T) {
	_, err := FromSerialized(newTestManager(), map[int][]byte{RootBlobKey: []byte("not json")})
	require.Error(t, err)
	assert.True(t, errors.IsUnserialization(err))
}
