package layer

import (
	"strings"

	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

const keyJoiner = "\x1f"

// rowKey encodes the merge key of r. ok is false when every key is null;
// such rows never match anything.
func rowKey(r models.Row, keys []string) (string, bool) {
	parts := make([]string, len(keys))
	ok := false
	for i, k := range keys {
		v := r[k]
		if !models.IsNull(v) {
			ok = true
		}
		parts[i] = models.KeyString(v)
	}
	return strings.Join(parts, keyJoiner), ok
}

// missingColumns returns the names in want that t lacks.
func missingColumns(t *models.Table, want []string) []string {
	var missing []string
	for _, c := range want {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// joinSpec carries everything one pairwise join needs
type joinSpec struct {
	name     string
	keys     []string
	how      JoinType
	resolver func(column string) resolve.Spec
	sides    resolve.Sides
}

// joinStats reports per-column conflicts seen during a join
type joinStats struct {
	conflicts map[string]int
}

// join performs a relational join of left and right on spec.keys. Columns
// present on both sides, other than the keys, are collapsed into one column
// at the left column's position through the configured resolution.
//
// Output order: left rows in original order, each followed by its matches in
// right order; then, for outer and right joins, right rows that matched
// nothing, in original order.
func join(left, right *models.Table, spec joinSpec) (*models.Table, joinStats, error) {
	stats := joinStats{conflicts: make(map[string]int)}

	isKey := make(map[string]bool, len(spec.keys))
	for _, k := range spec.keys {
		isKey[k] = true
	}

	var overlap []string
	var leftOnly, rightOnly []string
	for _, c := range left.Columns() {
		switch {
		case isKey[c]:
		case right.HasColumn(c):
			overlap = append(overlap, c)
		default:
			leftOnly = append(leftOnly, c)
		}
	}
	for _, c := range right.Columns() {
		if !isKey[c] && !left.HasColumn(c) {
			rightOnly = append(rightOnly, c)
		}
	}
	specs := make(map[string]resolve.Spec, len(overlap))
	for _, c := range overlap {
		specs[c] = spec.resolver(c)
	}

	out := models.NewTable(spec.name, left.Columns()...)
	for _, c := range rightOnly {
		out.AddColumn(c)
	}

	index := make(map[string][]int)
	for i, r := range right.Rows() {
		if k, ok := rowKey(r, spec.keys); ok {
			index[k] = append(index[k], i)
		}
	}

	combine := func(l, r models.Row) (models.Row, error) {
		row := make(models.Row, out.ColumnCount())
		keySrc := l
		if keySrc == nil {
			keySrc = r
		}
		for _, k := range spec.keys {
			row[k] = keySrc[k]
		}
		for _, c := range leftOnly {
			row[c] = l[c]
		}
		for _, c := range rightOnly {
			row[c] = r[c]
		}
		for _, c := range overlap {
			lv, rv := l[c], r[c]
			if !models.IsNull(lv) && !models.IsNull(rv) {
				stats.conflicts[c]++
			}
			v, err := resolve.Resolve(lv, rv, specs[c], spec.sides)
			if err != nil {
				return nil, err
			}
			row[c] = v
		}
		return row, nil
	}

	matched := make([]bool, right.Len())
	for _, l := range left.Rows() {
		var hits []int
		if k, ok := rowKey(l, spec.keys); ok {
			hits = index[k]
		}
		for _, ri := range hits {
			matched[ri] = true
			row, err := combine(l, right.Row(ri))
			if err != nil {
				return nil, stats, err
			}
			out.AppendRow(row)
		}
		if len(hits) == 0 && (spec.how == JoinLeft || spec.how == JoinOuter) {
			row, err := combine(l, nil)
			if err != nil {
				return nil, stats, err
			}
			out.AppendRow(row)
		}
	}

	if spec.how == JoinOuter || spec.how == JoinRight {
		for ri, r := range right.Rows() {
			if matched[ri] {
				continue
			}
			row, err := combine(nil, r)
			if err != nil {
				return nil, stats, err
			}
			out.AppendRow(row)
		}
	}
	return out, stats, nil
}
