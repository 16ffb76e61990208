package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledTracingIsNoop(t *testing.T) {
	require.NoError(t, Init(TracingConfig{}))

	_, span := StartSpan(context.Background(), "layer")
	span.SetAttribute("rows", 3)
	span.Finish(nil)
	assert.NotNil(t, Tracer())
}

func TestStdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ExporterType = "stdout"
	cfg.Writer = &buf
	require.NoError(t, Init(cfg))
	t.Cleanup(func() {
		_ = Shutdown(context.Background())
		_ = Init(TracingConfig{})
	})

	ctx, run := StartSpan(context.Background(), "run")
	_, layer := StartSpan(ctx, "layer.contacts")
	layer.SetAttribute("layer.kind", "merge")
	layer.SetAttribute("layer.sources", []string{"crm", "sheet"})
	layer.Finish(errors.New("key mismatch"))
	run.Finish(nil)

	out := buf.String()
	assert.Contains(t, out, "layer.contacts")
	assert.Contains(t, out, "layer.kind")
	assert.Contains(t, out, "key mismatch")
}

func TestUnsupportedExporter(t *testing.T) {
	err := Init(TracingConfig{Enabled: true, ExporterType: "zipkin"})
	assert.Error(t, err)
}
