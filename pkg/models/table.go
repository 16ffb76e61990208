// Package models provides the in-memory data model shared by every Strata
// component: scalar cell values, rows and column-ordered tables.
//
// A Table keeps its column order explicitly; rows are plain maps keyed by
// column name and an absent key is read as null. Tables are built once and
// are never mutated after being handed to another layer: every processor
// produces a fresh Table, using Clone when it needs to derive from an input.
package models

import (
	"sort"
)

// Row is a single record: column name to scalar value.
type Row map[string]interface{}

// Clone returns a shallow copy of the row. Values are scalars, so the copy
// is fully independent of the original.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Table is an ordered sequence of rows whose column set is the union of all
// columns seen across rows.
type Table struct {
	// Name identifies the table in the namespace (source or layer name)
	Name string

	columns []string
	index   map[string]int
	rows    []Row
}

// NewTable creates an empty table with the given columns in order.
// Duplicate column names are ignored.
func NewTable(name string, columns ...string) *Table {
	t := &Table{
		Name:  name,
		index: make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// FromRows builds a table from rows. Columns listed in columns come first in
// the given order; any other key found in the rows is appended in sorted
// order so the result is deterministic.
func FromRows(name string, columns []string, rows []Row) *Table {
	t := NewTable(name, columns...)
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

// Columns returns a copy of the ordered column list.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Rows exposes the underlying rows. Callers must treat them as read-only.
func (t *Table) Rows() []Row {
	return t.rows
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Value returns the cell at row i and column col; absent cells are nil.
func (t *Table) Value(i int, col string) interface{} {
	return t.rows[i][col]
}

// AddColumn appends a column if it does not exist yet.
func (t *Table) AddColumn(name string) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[name]; ok {
		return
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
}

// AppendRow appends a row, registering any column it introduces. The row is
// stored as given; callers hand over ownership.
func (t *Table) AppendRow(r Row) {
	if len(r) > 0 {
		var unseen []string
		for k := range r {
			if !t.HasColumn(k) {
				unseen = append(unseen, k)
			}
		}
		sort.Strings(unseen)
		for _, k := range unseen {
			t.AddColumn(k)
		}
	}
	t.rows = append(t.rows, r)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := NewTable(t.Name, t.columns...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		out.rows[i] = r.Clone()
	}
	return out
}

// Rename returns a copy of the table with columns renamed according to
// mapping. Renaming onto an existing column overwrites it, keeping the
// position of the earlier of the two.
func (t *Table) Rename(mapping map[string]string) *Table {
	if len(mapping) == 0 {
		return t.Clone()
	}
	target := func(c string) string {
		if n, ok := mapping[c]; ok && n != "" {
			return n
		}
		return c
	}

	cols := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		cols = append(cols, target(c))
	}
	out := NewTable(t.Name, cols...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(r))
		// Iterate in column order so collisions resolve deterministically.
		for _, c := range t.columns {
			if v, ok := r[c]; ok {
				if _, taken := nr[target(c)]; taken && IsNull(v) {
					continue
				}
				nr[target(c)] = v
			}
		}
		out.rows[i] = nr
	}
	return out
}

// Select returns a copy containing only the listed columns, in the listed
// order. Missing columns are skipped and returned.
func (t *Table) Select(columns ...string) (*Table, []string) {
	var keep, missing []string
	for _, c := range columns {
		if t.HasColumn(c) {
			keep = append(keep, c)
		} else {
			missing = append(missing, c)
		}
	}
	out := NewTable(t.Name, keep...)
	out.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.rows[i] = nr
	}
	return out, missing
}

// Drop returns a copy without the listed columns.
func (t *Table) Drop(columns ...string) *Table {
	drop := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		drop[c] = struct{}{}
	}
	var keep []string
	for _, c := range t.columns {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// Reorder returns a copy whose listed columns come first, followed by the
// remaining columns in their current order. Unknown names are returned.
func (t *Table) Reorder(first ...string) (*Table, []string) {
	seen := make(map[string]struct{}, len(first))
	var order, missing []string
	for _, c := range first {
		if !t.HasColumn(c) {
			missing = append(missing, c)
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		order = append(order, c)
	}
	for _, c := range t.columns {
		if _, ok := seen[c]; !ok {
			order = append(order, c)
		}
	}
	out, _ := t.Select(order...)
	return out, missing
}

// WithName returns a deep copy carrying a different name.
func (t *Table) WithName(name string) *Table {
	out := t.Clone()
	out.Name = name
	return out
}
