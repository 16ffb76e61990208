// Package dedup collapses records that refer to the same entity, identified
// by a composite key built from normalized email and phone values.
//
// Two modes are supported:
//
//   - drop keeps exactly one record per key (the first or the last in input
//     order) and discards the rest.
//   - merge keeps one base record per key and fills each of its null cells
//     with the first non-null value found among the other records of the
//     same key, in input order.
//
// Records whose key is null (no usable email nor phone) are never grouped
// and always survive untouched.
package dedup

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/models"
)

// Mode selects how duplicates are collapsed
type Mode string

const (
	// ModeDrop keeps one record per key and discards the others
	ModeDrop Mode = "drop"
	// ModeMerge keeps one record per key and fills its gaps from the others
	ModeMerge Mode = "merge"
)

// Keep selects which record of a partition serves as the survivor
type Keep string

const (
	KeepFirst Keep = "first"
	KeepLast  Keep = "last"
)

const (
	// DuplicateCountColumn holds the size of a record's key partition
	DuplicateCountColumn = "duplicate_count"
	// IsDuplicateColumn is true when the partition holds more than one record
	IsDuplicateColumn = "is_duplicate"
	// NormalizedSuffix is appended to identifier columns when normalized
	// values are emitted
	NormalizedSuffix = "_normalized"
)

// Options configures a Deduplicator
type Options struct {
	Mode Mode `yaml:"mode" json:"mode"`
	Keep Keep `yaml:"keep" json:"keep"`
	// Annotate adds duplicate_count and is_duplicate to every output record.
	// A record that already carries duplicate_count counts as that many
	// records, so annotating an annotated table keeps its counts.
	Annotate bool       `yaml:"annotate" json:"annotate"`
	Keys     KeyColumns `yaml:",inline" json:"keys"`
	// MergeColumns restricts gap filling to these columns; empty means all
	MergeColumns []string `yaml:"merge_columns" json:"merge_columns"`
	// EmitNormalized adds <column>_normalized for both identifier columns
	EmitNormalized bool `yaml:"emit_normalized" json:"emit_normalized"`
}

// Validate fills defaults and rejects unknown modes.
func (o *Options) Validate() error {
	if o.Mode == "" {
		o.Mode = ModeDrop
	}
	if o.Keep == "" {
		o.Keep = KeepFirst
	}
	switch o.Mode {
	case ModeDrop, ModeMerge:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown dedupe mode %q", o.Mode)
	}
	switch o.Keep {
	case KeepFirst, KeepLast:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown dedupe keep %q", o.Keep)
	}
	o.Keys = o.Keys.withDefaults()
	return nil
}

// Summary describes one deduplication pass. It exists for observability and
// carries no functional meaning.
type Summary struct {
	Mode        Mode
	InputRows   int
	OutputRows  int
	Affected    int
	Partitions  int
	NullKeyRows int
}

// DuplicateRate is the share of input rows that were collapsed.
func (s Summary) DuplicateRate() float64 {
	if s.InputRows == 0 {
		return 0
	}
	return float64(s.Affected) / float64(s.InputRows)
}

// String renders the summary for logs and the CLI.
func (s Summary) String() string {
	return fmt.Sprintf("%s: %d -> %d rows (%d collapsed, %.1f%%)",
		s.Mode, s.InputRows, s.OutputRows, s.Affected, s.DuplicateRate()*100)
}

// Deduplicator applies one configured deduplication pass to tables
type Deduplicator struct {
	opts   Options
	logger *zap.Logger
}

// New validates opts and returns a Deduplicator.
func New(opts Options, log *zap.Logger) (*Deduplicator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Deduplicator{
		opts:   opts,
		logger: logger.OrGlobal(log).With(zap.String("component", "dedup")),
	}, nil
}

// Options returns the validated options.
func (d *Deduplicator) Options() Options {
	return d.opts
}

// partition is the set of row indices sharing one composite key
type partition struct {
	members []int
}

func (p *partition) base(keep Keep) int {
	if keep == KeepLast {
		return p.members[len(p.members)-1]
	}
	return p.members[0]
}

// Apply deduplicates t and returns a fresh table. t is never modified.
func (d *Deduplicator) Apply(t *models.Table) (*models.Table, Summary) {
	summary := Summary{Mode: d.opts.Mode, InputRows: t.Len()}
	if t.IsEmpty() {
		summary.OutputRows = 0
		return t.Clone(), summary
	}

	rows := t.Rows()
	keys := make([]string, len(rows))
	hasKey := make([]bool, len(rows))
	partitions := make(map[string]*partition)
	for i, r := range rows {
		k, ok := d.opts.Keys.KeyFor(r)
		keys[i], hasKey[i] = k, ok
		if !ok {
			summary.NullKeyRows++
			continue
		}
		p, exists := partitions[k]
		if !exists {
			p = &partition{}
			partitions[k] = p
		}
		p.members = append(p.members, i)
	}
	summary.Partitions = len(partitions)

	out := models.NewTable(t.Name, t.Columns()...)
	if d.opts.Annotate {
		out.AddColumn(DuplicateCountColumn)
		out.AddColumn(IsDuplicateColumn)
	}
	if d.opts.EmitNormalized {
		out.AddColumn(d.opts.Keys.Email + NormalizedSuffix)
		out.AddColumn(d.opts.Keys.Phone + NormalizedSuffix)
	}

	mergeCols := d.opts.MergeColumns
	if len(mergeCols) == 0 {
		mergeCols = t.Columns()
	}

	for i, r := range rows {
		size := priorCount(r)
		var row models.Row
		if !hasKey[i] {
			row = r.Clone()
		} else {
			p := partitions[keys[i]]
			if p.base(d.opts.Keep) != i {
				continue
			}
			size = 0
			for _, m := range p.members {
				size += priorCount(rows[m])
			}
			row = r.Clone()
			if d.opts.Mode == ModeMerge && len(p.members) > 1 {
				fillGaps(row, rows, p.members, i, mergeCols)
			}
		}
		if d.opts.Annotate {
			row[DuplicateCountColumn] = size
			row[IsDuplicateColumn] = size > 1
		}
		if d.opts.EmitNormalized {
			email, phone := d.opts.Keys.Normalized(row)
			row[d.opts.Keys.Email+NormalizedSuffix] = email
			row[d.opts.Keys.Phone+NormalizedSuffix] = phone
		}
		out.AppendRow(row)
	}

	summary.OutputRows = out.Len()
	summary.Affected = summary.InputRows - summary.OutputRows
	d.report(t.Name, summary)
	return out, summary
}

// priorCount is the number of original records r stands for: its
// duplicate_count from an earlier annotated pass, or 1.
func priorCount(r models.Row) int64 {
	switch n := r[DuplicateCountColumn].(type) {
	case int64:
		if n > 0 {
			return n
		}
	case float64:
		if n >= 1 {
			return int64(n)
		}
	}
	return 1
}

// fillGaps adopts, for every null cell of base, the first non-null value
// among the other partition members in input order.
func fillGaps(base models.Row, rows []models.Row, members []int, baseIdx int, cols []string) {
	for _, col := range cols {
		if !models.IsNull(base[col]) {
			continue
		}
		for _, m := range members {
			if m == baseIdx {
				continue
			}
			if v := rows[m][col]; !models.IsNull(v) {
				base[col] = v
				break
			}
		}
	}
}

func (d *Deduplicator) report(table string, s Summary) {
	metrics.DedupRowsRemoved.WithLabelValues(string(s.Mode)).Add(float64(s.Affected))
	d.logger.Info("deduplication summary",
		zap.String("table", table),
		zap.String("mode", string(s.Mode)),
		zap.Int("input_rows", s.InputRows),
		zap.Int("output_rows", s.OutputRows),
		zap.Int("affected_rows", s.Affected),
		zap.Int("null_key_rows", s.NullKeyRows),
		zap.Float64("duplicate_rate", s.DuplicateRate()))
}

// Deduplicate is a convenience wrapper building a Deduplicator for one pass.
func Deduplicate(t *models.Table, opts Options, log *zap.Logger) (*models.Table, Summary, error) {
	d, err := New(opts, log)
	if err != nil {
		return nil, Summary{}, err
	}
	out, s := d.Apply(t)
	return out, s, nil
}
