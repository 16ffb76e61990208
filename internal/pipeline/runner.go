// Package pipeline runs a declarative Strata pipeline end to end: it stages
// every source into a namespace, materialises the layer graph and hands the
// requested layers to destination connectors.
//
// # Overview
//
// A run has four phases:
//   - staging: each source is loaded through its connector, its columns are
//     canonicalised, mapped, filtered and normalised, and its rows are tagged
//     with _source
//   - field metadata: a _field_metadata table describing every staged column
//   - layers: the layer executor materialises union and merge layers in
//     declaration order
//   - outputs: each output copies a layer, shapes its columns and writes it
//
// # Basic Usage
//
//	p, err := config.Load("pipeline.yaml")
//	runner, err := pipeline.New(p, pipeline.Options{})
//	result, err := runner.Run(ctx)
//
// A run is single-threaded and holds every table in memory.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/observability"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

// Options tune a run
type Options struct {
	// OnlyLayers restricts the run to these layers and the layers they
	// depend on. Outputs of layers that are not materialised are skipped.
	// Source names are accepted and add nothing.
	OnlyLayers []string
	// DryRun does everything except writing to destinations
	DryRun bool
	// Resolvers supplies custom conflict resolvers; nil uses the defaults
	Resolvers *resolve.Registry
	// Connectors supplies connector factories; nil uses the global registry
	Connectors *registry.Registry
	Logger     *zap.Logger
}

// Runner executes one validated pipeline
type Runner struct {
	pipeline   *config.Pipeline
	layers     []layer.Layer
	opts       Options
	connectors *registry.Registry
	executor   *layer.Executor
	logger     *zap.Logger
}

// LayerStat summarises a materialised table
type LayerStat struct {
	Name    string
	Kind    string
	Rows    int
	Columns int
}

// OutputStat summarises one output
type OutputStat struct {
	Name        string
	Layer       string
	Destination string
	Rows        int
	Columns     int
	Written     bool
	Skipped     bool
}

// Result describes a finished run
type Result struct {
	RunID     string
	Namespace *layer.Namespace
	Sources   []LayerStat
	Layers    []LayerStat
	Outputs   []OutputStat
	Duration  time.Duration
	// RSS is the resident set size of the process at the end of the run,
	// zero when it cannot be read
	RSS uint64
}

// Table returns a materialised table by name.
func (r *Result) Table(name string) (*models.Table, bool) {
	if r == nil || r.Namespace == nil {
		return nil, false
	}
	return r.Namespace.Get(name)
}

// New validates p and prepares a runner. Every configuration problem is
// reported here, before any source is loaded.
func New(p *config.Pipeline, opts Options) (*Runner, error) {
	if p == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pipeline is nil")
	}
	if opts.Resolvers == nil {
		opts.Resolvers = resolve.Default()
	}
	connectors := opts.Connectors
	if connectors == nil {
		connectors = registry.GetRegistry()
	}
	log := logger.OrGlobal(opts.Logger).With(zap.String("component", "pipeline"))

	if err := p.Validate(opts.Resolvers); err != nil {
		return nil, err
	}
	if err := checkConnectors(p, connectors); err != nil {
		return nil, err
	}
	all, err := p.BuildLayers(opts.Resolvers)
	if err != nil {
		return nil, err
	}
	layers, err := selectLayers(all, opts.OnlyLayers, p.SourceNames())
	if err != nil {
		return nil, err
	}

	return &Runner{
		pipeline:   p,
		layers:     layers,
		opts:       opts,
		connectors: connectors,
		executor:   layer.NewExecutor(log),
		logger:     log,
	}, nil
}

func checkConnectors(p *config.Pipeline, reg *registry.Registry) error {
	var problems []string
	for _, s := range p.Sources {
		if !reg.HasSource(s.Connector.Type) {
			problems = append(problems, fmt.Sprintf("source %s: unknown connector type %q (available: %s)",
				s.Name, s.Connector.Type, strings.Join(reg.ListSources(), ", ")))
		}
	}
	for _, o := range p.Outputs {
		if !reg.HasDestination(o.Destination.Type) {
			problems = append(problems, fmt.Sprintf("output %s: unknown connector type %q (available: %s)",
				o.Name, o.Destination.Type, strings.Join(reg.ListDestinations(), ", ")))
		}
	}
	if len(problems) > 0 {
		return errors.Newf(errors.ErrorTypeConfig, "invalid pipeline: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}

// selectLayers keeps the named layers and every layer they read from,
// preserving declaration order. Naming a source is allowed and selects no
// layer, which stages sources only.
func selectLayers(all []layer.Layer, only, sources []string) ([]layer.Layer, error) {
	if len(only) == 0 {
		return all, nil
	}
	byName := make(map[string]layer.Layer, len(all))
	for _, l := range all {
		byName[l.Name()] = l
	}
	isSource := make(map[string]bool, len(sources))
	for _, s := range sources {
		isSource[s] = true
	}
	needed := make(map[string]bool, len(only))
	var unknown []string
	for _, name := range only {
		if _, ok := byName[name]; !ok {
			if !isSource[name] {
				unknown = append(unknown, name)
			}
			continue
		}
		needed[name] = true
	}
	if len(unknown) > 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown layers requested: %s", strings.Join(unknown, ", "))
	}

	// Layers only read earlier names, so one backwards pass closes the set.
	for i := len(all) - 1; i >= 0; i-- {
		if !needed[all[i].Name()] {
			continue
		}
		for _, src := range all[i].Sources() {
			if _, isLayer := byName[src]; isLayer {
				needed[src] = true
			}
		}
	}

	out := make([]layer.Layer, 0, len(needed))
	for _, l := range all {
		if needed[l.Name()] {
			out = append(out, l)
		}
	}
	return out, nil
}

// Layers returns the layers this runner will materialise.
func (r *Runner) Layers() []layer.Layer {
	return r.layers
}

// Run executes the pipeline. Source failures are tolerated unless the
// pipeline sets fail_on_source_error; any layer or output failure aborts the
// run.
func (r *Runner) Run(ctx context.Context) (result *Result, err error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logger.ContextWith(ctx, logger.RunIDKey, runID)
	ctx, span := observability.StartSpan(ctx, "run")
	span.SetAttribute("run.id", runID)
	span.SetAttribute("run.dry_run", r.opts.DryRun)
	log := logger.FromContext(ctx, r.logger)

	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		metrics.RunsTotal.WithLabelValues(status).Inc()
		span.Finish(err)
	}()

	log.Info("run started",
		zap.String("pipeline", r.pipeline.Name),
		zap.Int("sources", len(r.pipeline.Sources)),
		zap.Int("layers", len(r.layers)),
		zap.Bool("dry_run", r.opts.DryRun))

	result = &Result{RunID: runID, Namespace: layer.NewNamespace()}

	staged, err := r.stageAll(ctx)
	if err != nil {
		return result, err
	}
	for _, s := range staged {
		if err := result.Namespace.Put(s.name, s.table); err != nil {
			return result, err
		}
		result.Sources = append(result.Sources, LayerStat{
			Name: s.name, Kind: "source", Rows: s.table.Len(), Columns: s.table.ColumnCount(),
		})
	}
	if r.pipeline.Settings.EmitsFieldMetadata() {
		if err := result.Namespace.Put(config.FieldMetadataName, FieldMetadata(staged)); err != nil {
			return result, err
		}
	}

	if err := r.executor.Run(ctx, result.Namespace, r.layers); err != nil {
		return result, err
	}
	for _, l := range r.layers {
		t, _ := result.Namespace.Get(l.Name())
		result.Layers = append(result.Layers, LayerStat{
			Name: l.Name(), Kind: string(l.Kind()), Rows: t.Len(), Columns: t.ColumnCount(),
		})
	}

	for _, oc := range r.pipeline.Outputs {
		stat, err := r.runOutput(ctx, result.Namespace, oc)
		if err != nil {
			return result, err
		}
		result.Outputs = append(result.Outputs, stat)
	}

	result.Duration = time.Since(start)
	result.RSS = residentMemory()
	log.Info("run finished",
		zap.Duration("duration", result.Duration),
		zap.Int("outputs", len(result.Outputs)),
		zap.Uint64("rss_bytes", result.RSS))
	return result, nil
}
