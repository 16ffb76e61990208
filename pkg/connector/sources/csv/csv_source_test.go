package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/compression"
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/testutil"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteCSV(t, dir, "crm.csv", []string{"Nama", "No HP", "Email"},
		[]string{"Budi", "0812-345", "budi@x.id"},
		[]string{"Sari", "", "-"},
	)

	cfg := config.NewConnectorConfig("crm", "csv").
		Set("path", path).
		Set("null_values", []interface{}{"-"}).
		Set("sheet", "Leads")
	src, err := NewCSVSource(cfg)
	require.NoError(t, err)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, src.Close(context.Background()))

	assert.Equal(t, "crm", got.Name)
	assert.Equal(t, []string{"Nama", "No HP", "Email", models.SheetColumn}, got.Columns())
	assert.Equal(t, "0812-345", got.Value(0, "No HP"))
	assert.Nil(t, got.Value(1, "No HP"))
	assert.Nil(t, got.Value(1, "Email"))
	assert.Equal(t, "Leads", got.Value(1, models.SheetColumn))
}

func TestLoadCompressed(t *testing.T) {
	data, err := compression.Compress([]byte("id;city\n1;Medan\n"), compression.Gzip, compression.Default)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "in.csv.gz")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	src, err := registry.CreateSource(config.NewConnectorConfig("x", "csv").
		Set("path", path).
		Set("delimiter", ";"))
	require.NoError(t, err)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Medan", got.Value(0, "city"))
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewCSVSource(config.NewConnectorConfig("x", "csv"))
	assert.Error(t, err)

	_, err = NewCSVSource(config.NewConnectorConfig("x", "csv").Set("path", "a").Set("delimiter", "||"))
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	src, err := NewCSVSource(config.NewConnectorConfig("x", "csv").Set("path", filepath.Join(t.TempDir(), "nope.csv")))
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}
