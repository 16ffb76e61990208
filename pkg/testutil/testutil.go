// Package testutil provides testing utilities for Strata
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/strata/pkg/models"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Table builds a table from rows, declaring columns in the given order.
func Table(name string, columns []string, rows ...models.Row) *models.Table {
	return models.FromRows(name, columns, rows)
}

// Column returns every value of col in row order.
func Column(t *models.Table, col string) []interface{} {
	out := make([]interface{}, t.Len())
	for i := range out {
		out[i] = t.Value(i, col)
	}
	return out
}

// RequireColumns fails the test unless tbl has exactly the given columns in
// order.
func RequireColumns(t *testing.T, tbl *models.Table, columns ...string) {
	t.Helper()
	require.Equal(t, columns, tbl.Columns())
}

// FindRow returns the first row whose col equals value, failing the test
// when none does.
func FindRow(t *testing.T, tbl *models.Table, col string, value interface{}) models.Row {
	t.Helper()
	for _, r := range tbl.Rows() {
		if r[col] == value {
			return r
		}
	}
	t.Fatalf("no row with %s=%v in %s", col, value, tbl.Name)
	return nil
}
