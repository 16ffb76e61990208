package layer

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/dedup"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/normalize"
)

// Transformation post-processes a layer or output table. The set of
// transformations is closed; each variant carries its own parameters.
type Transformation interface {
	Name() string
	Apply(t *models.Table, log *zap.Logger) (*models.Table, error)
	transformation()
}

// Dedupe collapses records sharing a composite key
type Dedupe struct {
	Options dedup.Options
}

func (Dedupe) Name() string    { return "dedupe" }
func (Dedupe) transformation() {}

// Apply runs one deduplication pass.
func (d Dedupe) Apply(t *models.Table, log *zap.Logger) (*models.Table, error) {
	dd, err := dedup.New(d.Options, log)
	if err != nil {
		return nil, err
	}
	out, _ := dd.Apply(t)
	return out, nil
}

// Normalize rewrites columns through field normalizers
type Normalize struct {
	Fields map[string]normalize.Kind
}

func (Normalize) Name() string    { return "normalize" }
func (Normalize) transformation() {}

// Apply normalizes each configured column the table has. Columns are
// processed in sorted order so results never depend on map iteration.
func (n Normalize) Apply(t *models.Table, log *zap.Logger) (*models.Table, error) {
	cols := make([]string, 0, len(n.Fields))
	fns := make(map[string]normalize.Func, len(n.Fields))
	for col, kind := range n.Fields {
		fn, err := normalize.Lookup(kind)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		fns[col] = fn
	}
	sort.Strings(cols)

	out := t.Clone()
	for _, col := range cols {
		if !out.HasColumn(col) {
			log.Debug("normalize: column absent", zap.String("column", col))
			continue
		}
		fn := fns[col]
		for _, r := range out.Rows() {
			r[col] = fn(r[col])
		}
	}
	return out, nil
}

// DropColumns removes columns
type DropColumns struct {
	Columns []string
}

func (DropColumns) Name() string    { return "drop_columns" }
func (DropColumns) transformation() {}

// Apply drops the listed columns; unknown names are ignored.
func (d DropColumns) Apply(t *models.Table, _ *zap.Logger) (*models.Table, error) {
	return t.Drop(d.Columns...), nil
}

// RenameColumns renames columns
type RenameColumns struct {
	Mapping map[string]string
}

func (RenameColumns) Name() string    { return "rename_columns" }
func (RenameColumns) transformation() {}

// Apply renames columns per the mapping.
func (r RenameColumns) Apply(t *models.Table, _ *zap.Logger) (*models.Table, error) {
	return t.Rename(r.Mapping), nil
}

// SelectColumns keeps only the listed columns, in the listed order
type SelectColumns struct {
	Columns []string
}

func (SelectColumns) Name() string    { return "select_columns" }
func (SelectColumns) transformation() {}

// Apply selects columns, warning about names the table lacks.
func (s SelectColumns) Apply(t *models.Table, log *zap.Logger) (*models.Table, error) {
	out, missing := t.Select(s.Columns...)
	if len(missing) > 0 {
		log.Warn("select_columns: columns not found", zap.Strings("missing", missing))
	}
	return out, nil
}

// ApplyAll runs transformations in order.
func ApplyAll(t *models.Table, transforms []Transformation, log *zap.Logger) (*models.Table, error) {
	log = logger.OrGlobal(log)
	for _, tr := range transforms {
		log.Debug("applying transformation", zap.String("transformation", tr.Name()))
		next, err := tr.Apply(t, log)
		if err != nil {
			return nil, err
		}
		next.Name = t.Name
		t = next
	}
	return t, nil
}
