package datatable

import (
	"testing"

	"github.com/spf13/cast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/quasar/pkg/aggregation"
	"github.com/ajitpratap0/quasar/pkg/errors"
)

func newTestManager() *Manager {
	return NewManager()
}

func labeledRow(label string, visits interface{}) *Row {
	r := NewRow()
	r.SetColumn(LabelColumn, label)
	r.SetColumn("visits", visits)
	return r
}

func columnOf(t *testing.T, row *Row, name string) interface{} {
	t.Helper()
	v, ok := row.Column(name)
	require.True(t, ok, "column %q missing", name)
	return v
}

func TestAddRowAppends(t *testing.T) {
	table := newTestManager().NewTable()

	stored, err := table.AddRow(labeledRow("a", int64(1)))
	require.NoError(t, err)
	assert.Equal(t, "a", mustLabel(t, stored))
	assert.Equal(t, 1, table.RowCount())
	assert.Nil(t, table.SummaryRow())
}

func TestAddRowFoldingBoundary(t *testing.T) {
	// maxAllowedRows=2: a appends, b seeds the summary, c sums into it.
	table := newTestManager().NewTable()
	table.SetMaxAllowedRows(2)

	stored, err := table.AddRow(labeledRow("a", int64(10)))
	require.NoError(t, err)
	assert.Equal(t, "a", mustLabel(t, stored))

	stored, err = table.AddRow(labeledRow("b", int64(5)))
	require.NoError(t, err)
	assert.Equal(t, SummaryLabel, mustLabel(t, stored))

	stored, err = table.AddRow(labeledRow("c", int64(7)))
	require.NoError(t, err)
	assert.Equal(t, SummaryLabel, mustLabel(t, stored))

	require.Equal(t, 2, table.RowCount())
	require.Equal(t, 1, table.RowCountWithoutSummary())
	assert.Equal(t, int64(10), columnOf(t, table.FirstRow(), "visits"))

	summary := table.SummaryRow()
	require.NotNil(t, summary)
	assert.Equal(t, int64(12), columnOf(t, summary, "visits"))
}

func TestAddRowFirstOverflowSeedsSummaryOnce(t *testing.T) {
	table := newTestManager().NewTable()
	table.SetMaxAllowedRows(1)

	_, err := table.AddRow(labeledRow("only", int64(3)))
	require.NoError(t, err)

	// the seeding row must not be double counted
	summary := table.SummaryRow()
	require.NotNil(t, summary)
	assert.Equal(t, int64(3), columnOf(t, summary, "visits"))
	assert.Equal(t, 0, table.RowCountWithoutSummary())
}

func TestAddRowFoldSkipsMetadata(t *testing.T) {
	table := newTestManager().NewTable()
	table.SetMaxAllowedRows(1)

	first := labeledRow("a", int64(1))
	first.SetMetadata("url", "http://a")
	_, err := table.AddRow(first)
	require.NoError(t, err)

	second := labeledRow("b", int64(2))
	second.SetMetadata("url", "http://b")
	_, err = table.AddRow(second)
	require.NoError(t, err)

	summary := table.SummaryRow()
	_, hasURL := summary.Metadata("url")
	assert.False(t, hasURL)
	assert.Equal(t, int64(3), columnOf(t, summary, "visits"))
}

func TestLabelIndexLazyRebuild(t *testing.T) {
	table := newTestManager().NewTable()
	for _, l := range []string{"a", "b", "c"} {
		_, err := table.AddRow(labeledRow(l, int64(1)))
		require.NoError(t, err)
	}
	assert.True(t, table.indexStale)
	assert.False(t, table.continuousIndex)

	row := table.RowFromLabel("b")
	require.NotNil(t, row)
	assert.False(t, table.indexStale)
	assert.True(t, table.continuousIndex, "lookup arms continuous maintenance")

	// with the index fresh and continuous mode armed, inserts patch it
	_, err := table.AddRow(labeledRow("d", int64(1)))
	require.NoError(t, err)
	assert.False(t, table.indexStale)
	assert.NotNil(t, table.RowFromLabel("d"))
}

func TestLabelIndexDuplicateLastWriteWins(t *testing.T) {
	table := newTestManager().NewTable()
	_, err := table.AddRow(labeledRow("dup", int64(1)))
	require.NoError(t, err)
	_, err = table.AddRow(labeledRow("dup", int64(2)))
	require.NoError(t, err)

	// rebuild path
	row := table.RowFromLabel("dup")
	require.NotNil(t, row)
	assert.Equal(t, int64(2), columnOf(t, row, "visits"))

	// continuous patch path
	_, err = table.AddRow(labeledRow("dup", int64(3)))
	require.NoError(t, err)
	row = table.RowFromLabel("dup")
	require.NotNil(t, row)
	assert.Equal(t, int64(3), columnOf(t, row, "visits"))
}

func TestSummaryLabelBypassesIndex(t *testing.T) {
	table := newTestManager().NewTable()
	assert.Nil(t, table.RowFromLabel(SummaryLabel))
	assert.False(t, table.continuousIndex, "summary lookup must not touch the index")

	sum := NewRow()
	sum.SetColumn("visits", int64(9))
	table.AddSummaryRow(sum)

	row := table.RowFromLabel(SummaryLabel)
	require.NotNil(t, row)
	assert.Equal(t, int64(9), columnOf(t, row, "visits"))
	assert.Same(t, row, table.RowFromID(SummaryRowID))
}

func TestDeleteRow(t *testing.T) {
	table := newTestManager().NewTable()
	_, err := table.AddRow(labeledRow("a", int64(1)))
	require.NoError(t, err)
	_, err = table.AddRow(labeledRow("b", int64(2)))
	require.NoError(t, err)

	ids := table.RowIDs()
	require.Len(t, ids, 2)
	require.NoError(t, table.DeleteRow(ids[0]))
	assert.Equal(t, 1, table.RowCount())
	assert.Nil(t, table.RowFromLabel("a"))

	err = table.DeleteRow(ids[0])
	require.Error(t, err)
	assert.True(t, errors.IsUnknownRow(err))

	// ids are never reused: the next insert gets a fresh id
	_, err = table.AddRow(labeledRow("c", int64(3)))
	require.NoError(t, err)
	assert.NotContains(t, table.RowIDs(), ids[0])
}

func TestDeleteRowsOffset(t *testing.T) {
	table := newTestManager().NewTable()
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		_, err := table.AddRow(labeledRow(l, int64(1)))
		require.NoError(t, err)
	}
	table.DeleteRowsOffset(1, 2)
	labels := make([]string, 0, 3)
	for _, row := range table.Rows() {
		labels = append(labels, mustLabel(t, row))
	}
	assert.Equal(t, []string{"a", "d", "e"}, labels)

	table.DeleteRowsOffset(1, -1)
	require.Equal(t, 1, table.RowCount())
	assert.Equal(t, "a", mustLabel(t, table.FirstRow()))
}

func TestMergeDisjointLabels(t *testing.T) {
	mgr := newTestManager()
	a := mgr.NewTable()
	b := mgr.NewTable()
	_, err := a.AddRow(labeledRow("x", int64(1)))
	require.NoError(t, err)
	_, err = b.AddRow(labeledRow("y", int64(2)))
	require.NoError(t, err)

	require.NoError(t, a.AddDataTable(b))
	assert.Equal(t, 2, a.RowCount())
	assert.Equal(t, int64(1), columnOf(t, a.RowFromLabel("x"), "visits"))
	assert.Equal(t, int64(2), columnOf(t, a.RowFromLabel("y"), "visits"))
}

func TestMergeOverlappingLabelsSums(t *testing.T) {
	mgr := newTestManager()
	a := mgr.NewTable()
	b := mgr.NewTable()
	_, err := a.AddRow(labeledRow("x", int64(1)))
	require.NoError(t, err)
	_, err = b.AddRow(labeledRow("x", int64(2)))
	require.NoError(t, err)

	require.NoError(t, a.AddDataTable(b))
	assert.Equal(t, 1, a.RowCount())
	assert.Equal(t, int64(3), columnOf(t, a.RowFromLabel("x"), "visits"))
}

func TestMergeMaxOperator(t *testing.T) {
	mgr := newTestManager()
	a := mgr.NewTable()
	require.NoError(t, a.SetAggregationOperation("visits", "max"))
	_, err := a.AddRow(labeledRow("a", int64(5)))
	require.NoError(t, err)
	_, err = a.AddRow(labeledRow("b", int64(3)))
	require.NoError(t, err)

	b := mgr.NewTable()
	_, err = b.AddRow(labeledRow("a", int64(9)))
	require.NoError(t, err)

	require.NoError(t, a.AddDataTable(b))
	assert.Equal(t, int64(9), columnOf(t, a.RowFromLabel("a"), "visits"))
	assert.Equal(t, int64(3), columnOf(t, a.RowFromLabel("b"), "visits"))
}

func TestSetAggregationOperationUnknownOperator(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()

	err := table.SetAggregationOperation("bounce_rate", "avg")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Empty(t, table.AggregationOperations())
}

func TestMergeRegisteredCustomOperator(t *testing.T) {
	require.NoError(t, aggregation.Register("halfway", func(existing, incoming interface{}) interface{} {
		a, errA := cast.ToFloat64E(existing)
		b, errB := cast.ToFloat64E(incoming)
		if errA != nil || errB != nil {
			return incoming
		}
		return (a + b) / 2
	}))

	mgr := newTestManager()
	a := mgr.NewTable()
	require.NoError(t, a.SetAggregationOperation("visits", "halfway"))
	_, err := a.AddRow(labeledRow("x", 10.0))
	require.NoError(t, err)

	b := mgr.NewTable()
	_, err = b.AddRow(labeledRow("x", 20.0))
	require.NoError(t, err)

	require.NoError(t, a.AddDataTable(b))
	assert.Equal(t, 15.0, columnOf(t, a.RowFromLabel("x"), "visits"))
}

func TestMergeRecursesIntoSubtables(t *testing.T) {
	mgr := newTestManager()

	a := mgr.NewTable()
	aRow := labeledRow("engine", int64(10))
	aSub := mgr.NewTable()
	_, err := aSub.AddRow(labeledRow("kw1", int64(4)))
	require.NoError(t, err)
	aRow.SetSubtable(aSub)
	_, err = a.AddRow(aRow)
	require.NoError(t, err)

	b := mgr.NewTable()
	bRow := labeledRow("engine", int64(5))
	bSub := mgr.NewTable()
	_, err = bSub.AddRow(labeledRow("kw1", int64(1)))
	require.NoError(t, err)
	_, err = bSub.AddRow(labeledRow("kw2", int64(2)))
	require.NoError(t, err)
	bRow.SetSubtable(bSub)
	_, err = b.AddRow(bRow)
	require.NoError(t, err)

	require.NoError(t, a.AddDataTable(b))

	merged := a.RowFromLabel("engine")
	require.NotNil(t, merged)
	assert.Equal(t, int64(15), columnOf(t, merged, "visits"))

	sub, err := merged.Subtable()
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, int64(5), columnOf(t, sub.RowFromLabel("kw1"), "visits"))
	assert.Equal(t, int64(2), columnOf(t, sub.RowFromLabel("kw2"), "visits"))
}

func TestMergeCopiesRowsWithoutAliasing(t *testing.T) {
	mgr := newTestManager()
	a := mgr.NewTable()
	b := mgr.NewTable()
	src := labeledRow("x", int64(1))
	_, err := b.AddRow(src)
	require.NoError(t, err)

	require.NoError(t, a.AddDataTable(b))
	src.SetColumn("visits", int64(99))
	assert.Equal(t, int64(1), columnOf(t, a.RowFromLabel("x"), "visits"))
}

func TestMergeSummaryRow(t *testing.T) {
	mgr := newTestManager()
	a := mgr.NewTable()
	b := mgr.NewTable()
	sum := NewRow()
	sum.SetColumn("visits", int64(7))
	b.AddSummaryRow(sum)

	require.NoError(t, a.AddDataTable(b))
	require.NotNil(t, a.SummaryRow())
	assert.Equal(t, int64(7), columnOf(t, a.SummaryRow(), "visits"))

	require.NoError(t, a.AddDataTable(b))
	assert.Equal(t, int64(14), columnOf(t, a.SummaryRow(), "visits"))
}

func TestTruncate(t *testing.T) {
	table := newTestManager().NewTable()
	for _, r := range []struct {
		label  string
		visits int64
	}{{"a", 10}, {"b", 2}, {"c", 30}, {"d", 4}} {
		_, err := table.AddRow(labeledRow(r.label, r.visits))
		require.NoError(t, err)
	}

	require.NoError(t, table.Truncate(3, "visits"))

	require.Equal(t, 2, table.RowCountWithoutSummary())
	assert.Equal(t, "c", mustLabel(t, table.FirstRow()))
	assert.Equal(t, "a", mustLabel(t, table.LastRow()))

	summary := table.SummaryRow()
	require.NotNil(t, summary)
	assert.Equal(t, SummaryLabel, mustLabel(t, summary))
	assert.Equal(t, int64(6), columnOf(t, summary, "visits"))
}

func TestTruncateNoopWhenUnderLimit(t *testing.T) {
	table := newTestManager().NewTable()
	_, err := table.AddRow(labeledRow("a", int64(1)))
	require.NoError(t, err)
	require.NoError(t, table.Truncate(5, "visits"))
	assert.Equal(t, 1, table.RowCount())
	assert.Nil(t, table.SummaryRow())
}

func TestSortByColumn(t *testing.T) {
	table := newTestManager().NewTable()
	for _, r := range []struct {
		label  string
		visits int64
	}{{"a", 2}, {"b", 30}, {"c", 1}} {
		_, err := table.AddRow(labeledRow(r.label, r.visits))
		require.NoError(t, err)
	}

	require.NoError(t, table.SortByColumn("visits", true))
	labels := make([]string, 0, 3)
	for _, row := range table.Rows() {
		labels = append(labels, mustLabel(t, row))
	}
	assert.Equal(t, []string{"b", "a", "c"}, labels)
	assert.Equal(t, "visits", table.SortedBy())
}

func TestSortRecursive(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	table.EnableRecursiveSort()

	parent := labeledRow("p", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("low", int64(1)))
	require.NoError(t, err)
	_, err = sub.AddRow(labeledRow("high", int64(10)))
	require.NoError(t, err)
	parent.SetSubtable(sub)
	_, err = table.AddRow(parent)
	require.NoError(t, err)

	require.NoError(t, table.SortByColumn("visits", true))
	assert.Equal(t, "high", mustLabel(t, sub.FirstRow()))
}

func TestWalkPathEmpty(t *testing.T) {
	table := newTestManager().NewTable()
	res, err := table.WalkPath(nil)
	require.NoError(t, err)
	assert.Same(t, table, res.Table)
	assert.Nil(t, res.Row)
	assert.Equal(t, 0, res.Matched)
}

func TestWalkPathMissWithoutCreate(t *testing.T) {
	table := newTestManager().NewTable()
	res, err := table.WalkPath([]string{"missing"})
	require.NoError(t, err)
	assert.Nil(t, res.Row)
	assert.Equal(t, 0, res.Matched)
	assert.Same(t, table, res.Table)
}

func TestWalkPathDescends(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	parent := labeledRow("engines", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("keywords", int64(2)))
	require.NoError(t, err)
	parent.SetSubtable(sub)
	_, err = table.AddRow(parent)
	require.NoError(t, err)

	res, err := table.WalkPath([]string{"engines", "keywords"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matched)
	assert.Same(t, sub, res.Table)
	assert.Equal(t, int64(2), columnOf(t, res.Row, "visits"))
}

func TestWalkPathCreateBuildsBranch(t *testing.T) {
	table := newTestManager().NewTable()
	require.NoError(t, table.SetAggregationOperation("visits", "max"))

	res, err := table.WalkPathCreate([]string{"a", "b"}, map[string]interface{}{"visits": int64(0)}, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, "b", mustLabel(t, res.Row))

	parent := table.RowFromLabel("a")
	require.NotNil(t, parent)
	sub, err := parent.Subtable()
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, 4, sub.MaxAllowedRows())
	assert.Equal(t, "max", sub.AggregationOperations()["visits"])
}

func TestWalkPathCreateFoldedIntoSummary(t *testing.T) {
	table := newTestManager().NewTable()
	table.SetMaxAllowedRows(1)
	_, err := table.AddRow(labeledRow("a", int64(1)))
	require.NoError(t, err)

	res, err := table.WalkPathCreate([]string{"b", "c"}, nil, 0)
	require.NoError(t, err)
	require.NotNil(t, res.Row)
	assert.Equal(t, SummaryLabel, mustLabel(t, res.Row))
	assert.Equal(t, 1, res.Matched, "descent stops at the fold")
	assert.Empty(t, res.Row.MetadataMap())
}

func TestRenameColumnRecursive(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	parent := labeledRow("p", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("child", int64(2)))
	require.NoError(t, err)
	parent.SetSubtable(sub)
	_, err = table.AddRow(parent)
	require.NoError(t, err)

	require.NoError(t, table.RenameColumn("visits", "nb_visits"))

	assert.Equal(t, int64(1), columnOf(t, table.RowFromLabel("p"), "nb_visits"))
	assert.Equal(t, int64(2), columnOf(t, sub.RowFromLabel("child"), "nb_visits"))
	_, ok := table.RowFromLabel("p").Column("visits")
	assert.False(t, ok)
}

func TestMergeSubtablesPrefixLabels(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	for _, parent := range []string{"p1", "p2"} {
		row := labeledRow(parent, int64(1))
		sub := mgr.NewTable()
		_, err := sub.AddRow(labeledRow("child", int64(2)))
		require.NoError(t, err)
		row.SetSubtable(sub)
		_, err = table.AddRow(row)
		require.NoError(t, err)
	}

	flat, err := table.MergeSubtables(MergeSubtablesOptions{PrefixLabels: true})
	require.NoError(t, err)
	assert.Equal(t, 2, flat.RowCount())
	assert.NotNil(t, flat.RowFromLabel("p1 - child"))
	assert.NotNil(t, flat.RowFromLabel("p2 - child"))
}

func TestMergeSubtablesParentMetadata(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	row := labeledRow("p1", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("child", int64(2)))
	require.NoError(t, err)
	row.SetSubtable(sub)
	_, err = table.AddRow(row)
	require.NoError(t, err)

	flat, err := table.MergeSubtables(MergeSubtablesOptions{ParentLabelMetadata: "parent"})
	require.NoError(t, err)
	child := flat.RowFromLabel("child")
	require.NotNil(t, child)
	parent, ok := child.Metadata("parent")
	require.True(t, ok)
	assert.Equal(t, "p1", parent)
}

func TestMergeSubtablesCombinesSummaries(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	for i, visits := range []int64{3, 4} {
		row := labeledRow("p", int64(i))
		sub := mgr.NewTable()
		sum := NewRow()
		sum.SetColumn("visits", visits)
		sub.AddSummaryRow(sum)
		row.SetSubtable(sub)
		_, err := table.AddRow(row)
		require.NoError(t, err)
	}

	flat, err := table.MergeSubtables(MergeSubtablesOptions{})
	require.NoError(t, err)
	require.NotNil(t, flat.SummaryRow())
	assert.Equal(t, int64(7), columnOf(t, flat.SummaryRow(), "visits"))
}

func TestRowCountRecursive(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	parent := labeledRow("p", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("c1", int64(1)))
	require.NoError(t, err)
	_, err = sub.AddRow(labeledRow("c2", int64(1)))
	require.NoError(t, err)
	parent.SetSubtable(sub)
	_, err = table.AddRow(parent)
	require.NoError(t, err)

	n, err := table.RowCountRecursive()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRecursionLimitOnCyclicGraph(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	row := labeledRow("self", int64(1))
	_, err := table.AddRow(row)
	require.NoError(t, err)
	row.SetSubtableID(table.ID(), mgr)

	_, err = table.RowCountRecursive()
	require.Error(t, err)
	assert.True(t, errors.IsRecursionLimit(err))

	_, err = table.Serialize(SerializeOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsRecursionLimit(err))
}

func TestTableCopyIsDeep(t *testing.T) {
	mgr := newTestManager()
	table := mgr.NewTable()
	require.NoError(t, table.SetAggregationOperation("visits", "max"))
	parent := labeledRow("p", int64(1))
	sub := mgr.NewTable()
	_, err := sub.AddRow(labeledRow("c", int64(2)))
	require.NoError(t, err)
	parent.SetSubtable(sub)
	_, err = table.AddRow(parent)
	require.NoError(t, err)

	dup, err := table.Copy()
	require.NoError(t, err)
	assert.NotEqual(t, table.ID(), dup.ID())
	assert.True(t, table.Equal(dup))
	assert.Equal(t, "max", dup.AggregationOperations()["visits"])

	dupSub, err := dup.RowFromLabel("p").Subtable()
	require.NoError(t, err)
	require.NotNil(t, dupSub)
	assert.NotEqual(t, sub.ID(), dupSub.ID(), "subtable copied into a fresh registry entry")

	// mutating the copy leaves the original alone
	dup.RowFromLabel("p").SetColumn("visits", int64(99))
	assert.Equal(t, int64(1), columnOf(t, table.RowFromLabel("p"), "visits"))
}

func TestColumnAccessors(t *testing.T) {
	table := newTestManager().NewTable()
	_, err := table.AddRow(labeledRow("a", int64(1)))
	require.NoError(t, err)
	_, err = table.AddRow(labeledRow("b", int64(2)))
	require.NoError(t, err)
	sum := NewRow()
	sum.SetColumn("visits", int64(3))
	table.AddSummaryRow(sum)

	assert.Equal(t, []string{LabelColumn, "visits"}, table.ColumnNames())
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(3)}, table.ColumnValues("visits"))

	table.DeleteColumn("visits")
	assert.Equal(t, []interface{}{nil, nil, nil}, table.ColumnValues("visits"))
}

func TestTableMetadata(t *testing.T) {
	table := newTestManager().NewTable()
	table.SetMetadata("ts_archived", "2026-08-29")
	v, ok := table.Metadata("ts_archived")
	require.True(t, ok)
	assert.Equal(t, "2026-08-29", v)
	assert.True(t, table.DeleteMetadata("ts_archived"))
	assert.False(t, table.DeleteMetadata("ts_archived"))
}

func mustLabel(t *testing.T, row *Row) string {
	t.Helper()
	label, ok := row.Label()
	require.True(t, ok, "row has no label")
	return label
}
