package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

const pipelineYAML = `
version: "1"
name: contacts
column_mapping:
  no_hp: phone_number
sources:
  - name: crm
    connector:
      type: csv
      path: ${STRATA_TEST_DIR}/crm.csv
      timeout: 30s
    normalizers: {phone_number: phone}
  - name: sheet
    connector:
      type: gsheets
      spreadsheet_id: ${STRATA_TEST_SHEET:-sheet-123}
      sheets: [Leads, Events]
    add_source_metadata: false
layers:
  - name: everyone
    type: union
    sources: [crm, sheet]
    transformations:
      - {type: dedupe, mode: merge, keep: last}
  - name: enriched
    type: merge
    sources: [everyone, crm]
    merge_keys: [email]
    merge_type: left
    columns_to_keep_separate: [notes]
    default_resolution: {strategy: last}
    conflict_resolution:
      city: {strategy: preferSource, preferred_source: crm}
      tags: {strategy: concat, separator: ";"}
      visits: {strategy: custom, resolver: sum}
outputs:
  - name: out
    layer: enriched
    destination: {type: csv, path: out.csv}
    include_columns: [email, city]
settings:
  fail_on_source_error: true
`

func TestParsePipeline(t *testing.T) {
	t.Setenv("STRATA_TEST_DIR", "/data")

	p, err := Parse([]byte(pipelineYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"crm", "sheet"}, p.SourceNames())
	assert.Equal(t, "/data/crm.csv", p.Sources[0].Connector.String("path", ""))
	assert.Equal(t, 30*time.Second, p.Sources[0].Connector.GetTimeout())
	assert.Equal(t, "sheet-123", p.Sources[1].Connector.String("spreadsheet_id", ""))
	assert.Equal(t, []string{"Leads", "Events"}, p.Sources[1].Connector.Strings("sheets"))
	assert.True(t, p.Sources[0].TagsSource())
	assert.False(t, p.Sources[1].TagsSource())
	assert.True(t, p.Settings.FailOnSourceError)
	assert.True(t, p.Settings.EmitsFieldMetadata())

	require.NoError(t, p.Validate(nil))
}

func TestBuildLayers(t *testing.T) {
	p, err := Parse([]byte(pipelineYAML))
	require.NoError(t, err)

	layers, err := p.BuildLayers(nil)
	require.NoError(t, err)
	require.Len(t, layers, 2)

	union, ok := layers[0].(*layer.UnionLayer)
	require.True(t, ok)
	assert.True(t, union.AddSourceColumn)
	require.Len(t, union.Transforms, 1)
	assert.Equal(t, "dedupe", union.Transforms[0].Name())

	merge, ok := layers[1].(*layer.MergeLayer)
	require.True(t, ok)
	assert.Equal(t, layer.JoinLeft, merge.MergeType)
	assert.Equal(t, []string{"notes"}, merge.ExclusiveColumns)
	assert.Equal(t, resolve.Last, merge.DefaultResolution.Strategy)
	assert.Equal(t, resolve.PreferSource, merge.ConflictResolutions["city"].Strategy)
	assert.Equal(t, "crm", merge.ConflictResolutions["city"].PreferredSource)
	assert.Equal(t, resolve.Concatenate, merge.ConflictResolutions["tags"].Strategy)
	assert.NotNil(t, merge.ConflictResolutions["visits"].Custom)
}

func TestValidateUnknownStrategy(t *testing.T) {
	p, err := Parse([]byte(`
sources:
  - {name: a, connector: {type: csv}}
  - {name: b, connector: {type: csv}}
layers:
  - name: m
    type: merge
    sources: [a, b]
    merge_keys: [id]
    conflict_resolution:
      city: {strategy: average}
`))
	require.NoError(t, err)

	err = p.Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownStrategy))
}

func TestValidateCollectsProblems(t *testing.T) {
	p, err := Parse([]byte(`
sources:
  - {name: a, connector: {type: csv}, normalizers: {x: soundex}}
  - {name: a, connector: {}}
layers:
  - {name: u, type: union, sources: [a, ghost]}
outputs:
  - {name: o, layer: nowhere, destination: {type: csv}}
`))
	require.NoError(t, err)

	err = p.Validate(nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	problems := e.Details["problems"].([]string)
	assert.Len(t, problems, 5)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "nowhere")
}

func TestValidateUnknownCustomResolver(t *testing.T) {
	p, err := Parse([]byte(`
sources:
  - {name: a, connector: {type: csv}}
  - {name: b, connector: {type: csv}}
layers:
  - name: m
    type: merge
    sources: [a, b]
    merge_keys: [id]
    default_resolution: {strategy: custom, resolver: nope}
`))
	require.NoError(t, err)
	assert.Error(t, p.Validate(resolve.NewRegistry()))
}

func TestTransformationBuild(t *testing.T) {
	_, err := TransformationConfig{Type: "explode"}.Build()
	assert.Error(t, err)

	_, err = TransformationConfig{Type: "dedupe", Mode: "squash"}.Build()
	assert.Error(t, err)

	tr, err := TransformationConfig{Type: "normalize", Fields: map[string]string{"email": "email"}}.Build()
	require.NoError(t, err)
	assert.Equal(t, "normalize", tr.Name())
}

func TestConnectorGetters(t *testing.T) {
	c := NewConnectorConfig("x", "sql").
		Set("batch_size", 250).
		Set("create_table", "false").
		Set("columns", "a, b,,c")

	assert.Equal(t, 250, c.Int("batch_size", 10))
	assert.Equal(t, 10, c.Int("missing", 10))
	assert.False(t, c.Bool("create_table", true))
	assert.Equal(t, []string{"a", "b", "c"}, c.Strings("columns"))
	assert.Equal(t, DefaultTimeout, c.GetTimeout())

	_, err := c.Required("dsn")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, p.Layers, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("STRATA_A", "x")
	assert.Equal(t, "x-y-", substituteEnvVars("${STRATA_A}-${STRATA_UNSET:-y}-${STRATA_UNSET}"))
	assert.Equal(t, "no refs", substituteEnvVars("no refs"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}
