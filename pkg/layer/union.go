package layer

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// UnionProcessor materialises union layers
type UnionProcessor struct {
	logger *zap.Logger
}

// NewUnionProcessor creates a union processor
func NewUnionProcessor(log *zap.Logger) *UnionProcessor {
	return &UnionProcessor{logger: logger.OrGlobal(log).With(zap.String("component", "union"))}
}

// Process stacks the layer's sources in declaration order. A source missing
// from ns is skipped with a warning; with no resolvable source the result is
// an empty table.
func (p *UnionProcessor) Process(l *UnionLayer, ns Reader) *models.Table {
	log := p.logger.With(zap.String("layer", l.LayerName))

	var tables []*models.Table
	var names []string
	for _, name := range l.SourceNames {
		t, ok := ns.Get(name)
		if !ok {
			log.Warn("source not found, skipping", zap.String("source", name))
			continue
		}
		log.Debug("union source",
			zap.String("source", name),
			zap.Int("rows", t.Len()),
			zap.Int("columns", t.ColumnCount()))
		tables = append(tables, t)
		names = append(names, name)
	}
	if len(tables) == 0 {
		log.Warn("no data to union")
	}

	var tags []string
	if l.AddSourceColumn {
		tags = names
	}
	out := unionTables(l.LayerName, tables, tags)
	log.Info("union complete", zap.Int("rows", out.Len()), zap.Int("columns", out.ColumnCount()))
	return out
}

// unionTables concatenates tables. Columns appear in first-seen order and
// cells a table lacks read as null. When tags is non-nil, rows of tables[i]
// get _source = tags[i] unless that table already has a _source column.
func unionTables(name string, tables []*models.Table, tags []string) *models.Table {
	out := models.NewTable(name)
	for i, t := range tables {
		tag := tags != nil && !t.HasColumn(models.ProvenanceColumn)
		for _, c := range t.Columns() {
			out.AddColumn(c)
		}
		if tag {
			out.AddColumn(models.ProvenanceColumn)
		}
		for _, r := range t.Rows() {
			row := r.Clone()
			if tag {
				row[models.ProvenanceColumn] = tags[i]
			}
			out.AppendRow(row)
		}
	}
	return out
}
