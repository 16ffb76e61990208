package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/normalize"
	"github.com/ajitpratap0/strata/pkg/observability"
)

type stagedSource struct {
	name  string
	table *models.Table
}

func (r *Runner) stageAll(ctx context.Context) ([]stagedSource, error) {
	out := make([]stagedSource, 0, len(r.pipeline.Sources))
	for _, sc := range r.pipeline.Sources {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "run cancelled while staging "+sc.Name)
		}
		t, err := r.stageSource(ctx, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, stagedSource{name: sc.Name, table: t})
	}
	return out, nil
}

func (r *Runner) stageSource(ctx context.Context, sc config.SourceConfig) (t *models.Table, err error) {
	ctx = logger.ContextWith(ctx, logger.SourceKey, sc.Name)
	ctx, span := observability.StartSpan(ctx, "source."+sc.Name)
	span.SetAttribute("source.connector", sc.Connector.Type)
	defer func() { span.Finish(err) }()
	log := logger.FromContext(ctx, r.logger)
	start := time.Now()

	raw, err := r.load(ctx, sc)
	if err != nil {
		if r.pipeline.Settings.FailOnSourceError {
			log.Error("source failed", zap.Error(err))
			return nil, errors.Wrap(err, errors.TypeOf(err), "source "+sc.Name)
		}
		log.Warn("source failed, staging it empty", zap.Error(err))
		return models.NewTable(sc.Name), nil
	}

	t, err = Stage(raw, sc, StageOptions{
		GlobalMapping: r.pipeline.ColumnMapping,
		Canonicalize:  r.pipeline.Settings.CanonicalizesColumns(),
	}, log)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "source "+sc.Name)
	}

	metrics.SourceRows.WithLabelValues(sc.Name, sc.Connector.Type).Add(float64(t.Len()))
	span.SetAttribute("source.rows", t.Len())
	log.Info("source staged",
		zap.String("connector", sc.Connector.Type),
		zap.Int("rows", t.Len()),
		zap.Int("columns", t.ColumnCount()),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

func (r *Runner) load(ctx context.Context, sc config.SourceConfig) (*models.Table, error) {
	cfg := sc.Connector
	if cfg.Name == "" {
		cfg.Name = sc.Name
	}
	src, err := r.connectors.CreateSource(&cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(ctx); cerr != nil {
			logger.FromContext(ctx, r.logger).Warn("failed to close source", zap.Error(cerr))
		}
	}()
	t, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if t == nil {
		t = models.NewTable(sc.Name)
	}
	return t, nil
}

// StageOptions carries the pipeline-wide staging settings
type StageOptions struct {
	GlobalMapping map[string]string
	Canonicalize  bool
}

// Stage shapes a loaded table for the namespace, in order: canonicalise
// column names, apply the global then the source column mapping, keep the
// include list, drop the exclude list, run field normalizers and tag rows
// with _source.
func Stage(t *models.Table, sc config.SourceConfig, opts StageOptions, log *zap.Logger) (*models.Table, error) {
	log = logger.OrGlobal(log)
	out := t.WithName(sc.Name)

	if opts.Canonicalize {
		out = out.Rename(normalize.ColumnNames(userColumns(out)))
	}
	if len(opts.GlobalMapping) > 0 {
		out = out.Rename(opts.GlobalMapping)
	}
	if len(sc.ColumnMapping) > 0 {
		out = out.Rename(sc.ColumnMapping)
	}

	if len(sc.IncludeFields) > 0 {
		keep := append([]string(nil), sc.IncludeFields...)
		for _, c := range out.Columns() {
			if models.IsInternalColumn(c) {
				keep = append(keep, c)
			}
		}
		var missing []string
		out, missing = out.Select(keep...)
		if len(missing) > 0 {
			log.Warn("include_fields: columns not found", zap.Strings("missing", missing))
		}
	}
	if len(sc.ExcludeFields) > 0 {
		out = out.Drop(sc.ExcludeFields...)
	}

	fields := normalize.StandardFields()
	if sc.Normalizers != nil {
		fields = make(map[string]normalize.Kind, len(sc.Normalizers))
		for col, kind := range sc.Normalizers {
			fields[col] = normalize.Kind(kind)
		}
	}
	out, err := layer.Normalize{Fields: fields}.Apply(out, log)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid normalizer")
	}

	if sc.TagsSource() && !out.IsEmpty() {
		out.AddColumn(models.ProvenanceColumn)
		for _, r := range out.Rows() {
			r[models.ProvenanceColumn] = sc.Name
		}
	}
	out.Name = sc.Name
	return out, nil
}

// userColumns lists the columns that are not internal metadata.
func userColumns(t *models.Table) []string {
	var out []string
	for _, c := range t.Columns() {
		if !models.IsInternalColumn(c) {
			out = append(out, c)
		}
	}
	return out
}
