package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

func TestRegisterAndCreate(t *testing.T) {
	r := NewRegistry()
	table := models.FromRows("t", []string{"id"}, []models.Row{{"id": int64(1)}})

	require.NoError(t, r.RegisterSource("memory", func(cfg *config.ConnectorConfig) (core.Source, error) {
		return &core.TableSource{Table: table}, nil
	}))
	sink := &core.TableSink{}
	require.NoError(t, r.RegisterDestination("memory", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return sink, nil
	}))

	src, err := r.CreateSource(config.NewConnectorConfig("a", "memory"))
	require.NoError(t, err)
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	dst, err := r.CreateDestination(config.NewConnectorConfig("b", "memory"))
	require.NoError(t, err)
	require.NoError(t, dst.Write(context.Background(), got))
	assert.Equal(t, 1, sink.Last().Len())
}

func TestDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	f := func(cfg *config.ConnectorConfig) (core.Source, error) { return &core.TableSource{}, nil }
	require.NoError(t, r.RegisterSource("x", f))
	err := r.RegisterSource("x", f)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestUnknownConnector(t *testing.T) {
	r := NewRegistry()
	_, err := r.CreateSource(config.NewConnectorConfig("a", "nope"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = r.CreateDestination(&config.ConnectorConfig{})
	assert.Error(t, err)
}

func TestFactoryErrorIsWrapped(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterSource("bad", func(cfg *config.ConnectorConfig) (core.Source, error) {
		_, err := cfg.Required("path")
		return nil, err
	}))
	_, err := r.CreateSource(config.NewConnectorConfig("a", "bad"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"path" is required`)
}

func TestCatalog(t *testing.T) {
	r := NewRegistry()
	f := func(cfg *config.ConnectorConfig) (core.Source, error) { return &core.TableSource{}, nil }
	d := func(cfg *config.ConnectorConfig) (core.Destination, error) { return &core.TableSink{}, nil }
	require.NoError(t, r.RegisterSource("zeta", f))
	require.NoError(t, r.RegisterSource("alpha", f))
	require.NoError(t, r.RegisterDestination("alpha", d))
	r.Describe(&ConnectorInfo{Name: "alpha", Type: core.ConnectorTypeSource, Description: "first"})

	cat := r.Catalog()
	require.Len(t, cat, 3)
	assert.Equal(t, "alpha", cat[0].Name)
	assert.Equal(t, "first", cat[0].Description)
	assert.Equal(t, "zeta", cat[1].Name)
	assert.Equal(t, core.ConnectorTypeDestination, cat[2].Type)

	assert.Equal(t, []string{"alpha", "zeta"}, r.ListSources())
	assert.True(t, r.HasDestination("alpha"))
	assert.False(t, r.HasDestination("zeta"))
}
