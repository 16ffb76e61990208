package layer

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

// MergeProcessor materialises merge layers
type MergeProcessor struct {
	logger *zap.Logger
}

// NewMergeProcessor creates a merge processor
func NewMergeProcessor(log *zap.Logger) *MergeProcessor {
	return &MergeProcessor{logger: logger.OrGlobal(log).With(zap.String("component", "merge"))}
}

type preparedSource struct {
	name  string
	table *models.Table
}

// Process folds the layer's sources left to right. Sources missing from ns
// are skipped with a warning; fewer than two resolvable sources yield an
// empty table.
func (p *MergeProcessor) Process(l *MergeLayer, ns Reader) (*models.Table, error) {
	if len(l.SourceNames) < 2 {
		return nil, errors.Newf(errors.ErrorTypeConfig,
			"merge layer %s requires at least 2 sources, got %d", l.LayerName, len(l.SourceNames))
	}
	log := p.logger.With(zap.String("layer", l.LayerName))

	var prepared []preparedSource
	for _, name := range l.SourceNames {
		t, ok := ns.Get(name)
		if !ok {
			log.Warn("source not found, skipping", zap.String("source", name))
			continue
		}
		prepared = append(prepared, preparedSource{name: name, table: prepare(t, name, l)})
		log.Debug("merge source", zap.String("source", name), zap.Int("rows", t.Len()))
	}
	if len(prepared) < 2 {
		log.Warn("not enough sources to merge", zap.Int("resolved", len(prepared)))
		return models.NewTable(l.LayerName), nil
	}

	acc := prepared[0].table
	folded := []string{prepared[0].name}
	for _, next := range prepared[1:] {
		var err error
		acc, err = p.pairwise(l, acc, next, folded, log)
		if err != nil {
			return nil, err
		}
		folded = append(folded, next.name)
	}

	out := acc.WithName(l.LayerName)
	log.Info("merge complete",
		zap.String("merge_type", string(l.joinType())),
		zap.Strings("merge_keys", l.MergeKeys),
		zap.Int("rows", out.Len()),
		zap.Int("columns", out.ColumnCount()))
	return out, nil
}

// prepare suffixes the exclusive columns of t with _<source>. Merge keys,
// internal columns and mergeable columns keep their names.
func prepare(t *models.Table, source string, l *MergeLayer) *models.Table {
	keep := make(map[string]bool, len(l.MergeKeys)+len(l.MergeableColumns))
	for _, c := range l.MergeKeys {
		keep[c] = true
	}
	for _, c := range l.MergeableColumns {
		keep[c] = true
	}
	exclusive := make(map[string]bool, len(l.ExclusiveColumns))
	for _, c := range l.ExclusiveColumns {
		exclusive[c] = true
	}

	mapping := make(map[string]string)
	for _, c := range t.Columns() {
		if keep[c] || models.IsInternalColumn(c) || !exclusive[c] {
			continue
		}
		mapping[c] = c + "_" + source
	}
	return t.Rename(mapping)
}

// pairwise merges one more source into the accumulator.
func (p *MergeProcessor) pairwise(l *MergeLayer, acc *models.Table, next preparedSource, folded []string, log *zap.Logger) (*models.Table, error) {
	right := next.table
	if acc.IsEmpty() {
		log.Debug("accumulator empty, taking source as is", zap.String("source", next.name))
		return right, nil
	}
	if right.IsEmpty() {
		log.Debug("source empty, join skipped", zap.String("source", next.name))
		return acc, nil
	}

	missingLeft := missingColumns(acc, l.MergeKeys)
	missingRight := missingColumns(right, l.MergeKeys)
	if len(missingLeft) > 0 || len(missingRight) > 0 {
		metrics.KeyMismatches.WithLabelValues(l.LayerName).Inc()
		mismatch := errors.Newf(errors.ErrorTypeKeyMismatch,
			"merge keys missing when merging %s into layer %s", next.name, l.LayerName).
			WithDetail("missing_left", missingLeft).
			WithDetail("missing_right", missingRight)
		if l.mismatchPolicy() == MismatchFail {
			return nil, mismatch
		}
		log.Warn("merge keys missing, falling back",
			zap.String("source", next.name),
			zap.Strings("missing_left", missingLeft),
			zap.Strings("missing_right", missingRight),
			zap.String("merge_type", string(l.joinType())),
			zap.Error(mismatch))
		if l.joinType() == JoinLeft {
			return acc, nil
		}
		return unionTables(l.LayerName, []*models.Table{acc, right}, nil), nil
	}

	out, stats, err := join(acc, right, joinSpec{
		name:     l.LayerName,
		keys:     l.MergeKeys,
		how:      l.joinType(),
		resolver: l.resolution,
		sides:    resolve.Sides{Left: folded, Right: next.name},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "merge layer "+l.LayerName+" source "+next.name)
	}
	for col, n := range stats.conflicts {
		metrics.ConflictsResolved.WithLabelValues(l.resolution(col).Strategy.String()).Add(float64(n))
	}
	log.Debug("pairwise merge",
		zap.String("source", next.name),
		zap.Int("left_rows", acc.Len()),
		zap.Int("right_rows", right.Len()),
		zap.Int("rows", out.Len()))
	return out, nil
}
