package layer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/observability"
)

// Executor materialises layers into a namespace in declaration order
type Executor struct {
	logger *zap.Logger
	union  *UnionProcessor
	merge  *MergeProcessor
}

// NewExecutor creates an executor
func NewExecutor(log *zap.Logger) *Executor {
	log = logger.OrGlobal(log)
	return &Executor{
		logger: log.With(zap.String("component", "executor")),
		union:  NewUnionProcessor(log),
		merge:  NewMergeProcessor(log),
	}
}

// Validate checks every layer declaration and every reference before any
// data is processed. available lists the names present before the first
// layer runs. All problems are reported together as one config error.
func Validate(layers []Layer, available []string) error {
	known := make(map[string]bool, len(available)+len(layers))
	for _, n := range available {
		known[n] = true
	}

	var problems []string
	for i, l := range layers {
		if l == nil {
			problems = append(problems, fmt.Sprintf("layer #%d is nil", i))
			continue
		}
		if err := l.Validate(); err != nil {
			if errors.IsType(err, errors.ErrorTypeUnknownStrategy) {
				return err
			}
			problems = append(problems, err.Error())
		}
		for _, src := range l.Sources() {
			if !known[src] {
				problems = append(problems,
					fmt.Sprintf("layer %s references %s, which is neither a source nor an earlier layer", l.Name(), src))
			}
		}
		if known[l.Name()] {
			problems = append(problems, fmt.Sprintf("layer name %s is already in use", l.Name()))
		}
		known[l.Name()] = true
	}

	if len(problems) > 0 {
		return errors.Newf(errors.ErrorTypeConfig, "invalid layer graph: %s", strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}

// Run validates the layers against ns, then materialises each one and stores
// its output under the layer name. The first failure aborts the run.
func (e *Executor) Run(ctx context.Context, ns *Namespace, layers []Layer) error {
	if err := Validate(layers, ns.Names()); err != nil {
		return err
	}
	for _, l := range layers {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "run cancelled before layer "+l.Name())
		}
		if err := e.runLayer(ctx, ns, l); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) runLayer(ctx context.Context, ns *Namespace, l Layer) (err error) {
	ctx = logger.ContextWith(ctx, logger.LayerKey, l.Name())
	_, span := observability.StartSpan(ctx, "layer."+l.Name())
	span.SetAttribute("layer.kind", string(l.Kind()))
	span.SetAttribute("layer.sources", l.Sources())
	defer func() { span.Finish(err) }()

	log := logger.FromContext(ctx, e.logger)
	timer := metrics.NewTimer(l.Name())

	out, err := e.process(l, ns)
	if err != nil {
		log.Error("layer failed", zap.Error(err))
		return err
	}
	out, err = ApplyAll(out, l.Transformations(), log)
	if err != nil {
		log.Error("layer transformation failed", zap.Error(err))
		return errors.Wrap(err, errors.TypeOf(err), "layer "+l.Name()+" transformation")
	}
	if err = ns.Put(l.Name(), out); err != nil {
		return err
	}

	elapsed := timer.Stop()
	metrics.ObserveLayer(l.Name(), string(l.Kind()), out.Len(), elapsed)
	span.SetAttribute("layer.rows", out.Len())
	log.Info("layer materialised",
		zap.String("kind", string(l.Kind())),
		zap.Int("rows", out.Len()),
		zap.Int("columns", out.ColumnCount()),
		zap.Duration("duration", elapsed))
	return nil
}

func (e *Executor) process(l Layer, ns Reader) (*models.Table, error) {
	switch v := l.(type) {
	case *UnionLayer:
		return e.union.Process(v, ns), nil
	case *MergeLayer:
		return e.merge.Process(v, ns)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported layer type %T", l)
	}
}
