package json

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/testutil"
)

func TestLoadLines(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "events.jsonl", []byte(
		`{"email":"a@x.id","visits":3}
{"email":"b@x.id","visits":1.5,"vip":true}
`))

	src, err := NewJSONSource(config.NewConnectorConfig("events", "json").
		Set("path", path).
		Set("format", "lines"))
	require.NoError(t, err)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, []string{"email", "visits", "vip"}, got.Columns())
	assert.Equal(t, int64(3), got.Value(0, "visits"))
	assert.Equal(t, 1.5, got.Value(1, "visits"))
	assert.Equal(t, true, got.Value(1, "vip"))
	assert.Nil(t, got.Value(0, "vip"))
}

func TestLoadArray(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "c.json", []byte(`[{"id":1},{"id":2,"city":null}]`))
	src, err := NewJSONSource(config.NewConnectorConfig("c", "json").Set("path", path))
	require.NoError(t, err)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Nil(t, got.Value(1, "city"))
}

func TestInvalid(t *testing.T) {
	_, err := NewJSONSource(config.NewConnectorConfig("c", "json").Set("path", "x").Set("format", "xml"))
	assert.Error(t, err)

	path := testutil.WriteFile(t, t.TempDir(), "bad.json", []byte(`[{"id":`))
	src, err := NewJSONSource(config.NewConnectorConfig("c", "json").Set("path", path))
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.Error(t, err)
}
