package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/layer"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/observability"
)

func (r *Runner) runOutput(ctx context.Context, ns *layer.Namespace, oc config.OutputConfig) (stat OutputStat, err error) {
	stat = OutputStat{Name: oc.Name, Layer: oc.Layer, Destination: oc.Destination.Type}
	log := logger.FromContext(ctx, r.logger).With(zap.String("output", oc.Name))

	src, ok := ns.Get(oc.Layer)
	if !ok {
		// Only reachable when --only-layers left the layer out.
		log.Info("output skipped, layer not materialised", zap.String("layer", oc.Layer))
		stat.Skipped = true
		return stat, nil
	}

	ctx, span := observability.StartSpan(ctx, "output."+oc.Name)
	span.SetAttribute("output.layer", oc.Layer)
	span.SetAttribute("output.connector", oc.Destination.Type)
	defer func() { span.Finish(err) }()

	t, err := ShapeOutput(src, oc, log)
	if err != nil {
		return stat, err
	}
	stat.Rows, stat.Columns = t.Len(), t.ColumnCount()
	span.SetAttribute("output.rows", t.Len())

	if r.opts.DryRun {
		log.Info("dry run, output not written", zap.Int("rows", stat.Rows), zap.Int("columns", stat.Columns))
		return stat, nil
	}
	if err := r.write(ctx, oc, t); err != nil {
		return stat, err
	}
	stat.Written = true
	metrics.OutputRows.WithLabelValues(oc.Name, oc.Destination.Type).Add(float64(t.Len()))
	log.Info("output written",
		zap.String("connector", oc.Destination.Type),
		zap.Int("rows", stat.Rows),
		zap.Int("columns", stat.Columns))
	return stat, nil
}

func (r *Runner) write(ctx context.Context, oc config.OutputConfig, t *models.Table) error {
	cfg := oc.Destination
	if cfg.Name == "" {
		cfg.Name = oc.Name
	}
	dest, err := r.connectors.CreateDestination(&cfg)
	if err != nil {
		return errors.Wrap(err, errors.TypeOf(err), "output "+oc.Name)
	}
	if err := dest.Write(ctx, t); err != nil {
		_ = dest.Close(ctx)
		return errors.Wrap(err, errors.TypeOf(err), "output "+oc.Name)
	}
	if err := dest.Close(ctx); err != nil {
		return errors.Wrap(err, errors.TypeOf(err), "output "+oc.Name+": close")
	}
	return nil
}

// ShapeOutput copies a layer table and prepares it for a destination:
// transformations, internal column stripping, column subset and order.
func ShapeOutput(src *models.Table, oc config.OutputConfig, log *zap.Logger) (*models.Table, error) {
	log = logger.OrGlobal(log)
	t := src.WithName(oc.Name)

	if len(oc.Transformations) > 0 {
		transforms, err := config.BuildTransformations(oc.Transformations)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "output "+oc.Name)
		}
		if t, err = layer.ApplyAll(t, transforms, log); err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err), "output "+oc.Name)
		}
	}

	if !oc.KeepInternal {
		var internal []string
		for _, c := range t.Columns() {
			if models.IsInternalColumn(c) {
				internal = append(internal, c)
			}
		}
		if len(internal) > 0 {
			t = t.Drop(internal...)
		}
	}

	if len(oc.IncludeColumns) > 0 {
		var missing []string
		t, missing = t.Select(oc.IncludeColumns...)
		if len(missing) > 0 {
			log.Warn("include_columns: columns not found", zap.Strings("missing", missing))
		}
	}
	if len(oc.ColumnOrder) > 0 {
		var missing []string
		t, missing = t.Reorder(oc.ColumnOrder...)
		if len(missing) > 0 {
			log.Warn("column_order: columns not found", zap.Strings("missing", missing))
		}
	}
	t.Name = oc.Name
	return t, nil
}
