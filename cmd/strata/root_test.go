package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/json"
)

func writePipeline(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crm.csv"),
		[]byte("Email,City\nA@X.ID,Medan\nb@x.id,Padang\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sheet.csv"),
		[]byte("email,city\nb@x.id,Bukittinggi\nc@x.id,\n"), 0o600))

	doc := `
name: contacts
sources:
  - {name: crm, connector: {type: csv, path: ` + filepath.Join(dir, "crm.csv") + `}}
  - {name: sheet, connector: {type: csv, path: ` + filepath.Join(dir, "sheet.csv") + `}}
layers:
  - name: everyone
    type: union
    sources: [crm, sheet]
  - name: people
    type: merge
    sources: [crm, sheet]
    merge_keys: [email]
    merge_type: outer
    columns_to_merge: [city]
    conflict_resolution:
      city: {strategy: preferSource, preferred_source: sheet}
outputs:
  - name: people_json
    layer: people
    destination: {type: json, format: lines, path: ` + filepath.Join(dir, "out", "people.jsonl") + `}
    include_columns: [email, city]
`
	path = filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newApp(nil).command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionAndList(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Strata v"+version)

	out, err = execute(t, "list")
	require.NoError(t, err)
	for _, name := range []string{"csv", "json", "sql", "gsheets", "mongodb", "avro", "kafka", "s3", "gcs"} {
		assert.Contains(t, out, name)
	}
}

func TestValidate(t *testing.T) {
	_, path := writePipeline(t)
	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `pipeline "contacts" is valid: 2 sources, 2 layers, 1 outputs`)

	_, err = execute(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunWritesOutputs(t *testing.T) {
	dir, path := writePipeline(t)
	out, err := execute(t, "run", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "people_json")
	assert.Contains(t, out, "written")

	f, err := os.Open(filepath.Join(dir, "out", "people.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	cities := map[string]interface{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var row map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &row))
		cities[row["email"].(string)] = row["city"]
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, map[string]interface{}{
		"a@x.id": "Medan",
		"b@x.id": "Bukittinggi",
		"c@x.id": nil,
	}, cities)
}

func TestRunDryRunOnlyLayers(t *testing.T) {
	dir, path := writePipeline(t)
	out, err := execute(t, "run", "--config", path, "--dry-run", "--only-layers", "everyone")
	require.NoError(t, err)
	assert.Contains(t, out, "everyone")
	assert.Contains(t, out, "skipped")
	assert.NoFileExists(t, filepath.Join(dir, "out", "people.jsonl"))
}

func TestAnalyze(t *testing.T) {
	_, path := writePipeline(t)
	out, err := execute(t, "analyze", "--config", path, "--layer", "everyone")
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.EqualValues(t, 4, report["total_rows"])
	assert.EqualValues(t, 4, report["with_email"])
}

func TestScheduleRejectsBadCron(t *testing.T) {
	_, path := writePipeline(t)
	_, err := execute(t, "schedule", "--config", path, "--cron", "every tuesday")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid cron expression"))
}

func TestEnvironmentBinding(t *testing.T) {
	_, path := writePipeline(t)
	t.Setenv("STRATA_CONFIG", path)

	a := newApp(nil)
	cmd := a.command()
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, path, a.v.GetString("config"))
}
