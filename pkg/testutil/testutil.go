// Package testutil provides testing utilities for Quasar
package testutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/quasar/pkg/datatable"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// NewTestManager creates a table registry isolated to one test.
func NewTestManager(t *testing.T) *datatable.Manager {
	t.Helper()
	mgr := datatable.NewManager()
	t.Cleanup(mgr.Reset)
	return mgr
}

// BuildRow constructs a labeled row from a column map. The label goes
// first; remaining columns follow in sorted name order.
func BuildRow(label string, columns map[string]interface{}) *datatable.Row {
	row := datatable.NewRow()
	row.SetColumn(datatable.LabelColumn, label)
	fromMap := datatable.NewRowFromMap(columns)
	for _, name := range fromMap.ColumnNames() {
		if name == datatable.LabelColumn {
			continue
		}
		v, _ := fromMap.Column(name)
		row.SetColumn(name, v)
	}
	return row
}

// BuildTable constructs a table in mgr from label → column map, rows
// inserted in sorted label order.
func BuildTable(t *testing.T, mgr *datatable.Manager, rows map[string]map[string]interface{}) *datatable.Table {
	t.Helper()
	table := mgr.NewTable()
	for _, row := range rowsFromMaps(rows) {
		_, err := table.AddRow(row)
		require.NoError(t, err)
	}
	return table
}

func rowsFromMaps(rows map[string]map[string]interface{}) []*datatable.Row {
	labels := make([]string, 0, len(rows))
	for label := range rows {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	out := make([]*datatable.Row, 0, len(labels))
	for _, label := range labels {
		out = append(out, BuildRow(label, rows[label]))
	}
	return out
}

// RequireTablesEqual fails the test when the two tables are not
// row-equal, naming the first mismatching label.
func RequireTablesEqual(t *testing.T, expected, actual *datatable.Table) {
	t.Helper()
	require.NotNil(t, actual)
	require.Equal(t, expected.RowCountWithoutSummary(), actual.RowCountWithoutSummary(), "row count")
	for _, row := range expected.Rows() {
		label, ok := row.Label()
		require.True(t, ok, "expected row has no label")
		match := actual.RowFromLabel(label)
		require.NotNil(t, match, "row %q missing", label)
		require.True(t, row.Equal(match), "row %q differs: want %v, got %v", label, row.Columns(), match.Columns())
	}
	if sum := expected.SummaryRow(); sum != nil {
		require.NotNil(t, actual.SummaryRow(), "summary row missing")
		require.True(t, sum.Equal(actual.SummaryRow()), "summary row differs")
	} else {
		require.Nil(t, actual.SummaryRow(), "unexpected summary row")
	}
}
