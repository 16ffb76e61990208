package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

// CSVReadOptions controls how CSV text becomes table cells
type CSVReadOptions struct {
	Delimiter  rune
	HasHeader  bool
	NullValues []string
	TrimSpaces bool
	InferTypes bool
}

// CSVWriteOptions controls CSV rendering
type CSVWriteOptions struct {
	Delimiter   rune
	WriteHeader bool
}

// ParseDelimiter returns the first rune of s, or ',' when s is empty.
// "\t" and "tab" select a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, errors.Newf(errors.ErrorTypeConfig, "delimiter must be a single character, got %q", s)
	}
	return r, nil
}

// ReadCSV reads a CSV document into a table named name. Empty cells and
// cells listed in NullValues are null. Duplicate header names get a numeric
// suffix; blank header names become column_<n>.
func ReadCSV(r io.Reader, name string, opts CSVReadOptions) (*models.Table, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	nulls := make(map[string]struct{}, len(opts.NullValues))
	for _, v := range opts.NullValues {
		nulls[v] = struct{}{}
	}

	var header []string
	t := models.NewTable(name)
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, fmt.Sprintf("invalid CSV near record %d", line+1))
		}
		line++

		if header == nil {
			if opts.HasHeader {
				header = headerNames(record)
				for _, h := range header {
					t.AddColumn(h)
				}
				continue
			}
			header = make([]string, 0, len(record))
		}
		for len(header) < len(record) {
			h := fmt.Sprintf("column_%d", len(header)+1)
			header = append(header, h)
			t.AddColumn(h)
		}

		row := make(models.Row, len(record))
		for i, raw := range record {
			v := raw
			if opts.TrimSpaces {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			if _, isNull := nulls[v]; isNull {
				continue
			}
			if opts.InferTypes {
				row[header[i]] = inferScalar(v)
			} else {
				row[header[i]] = v
			}
		}
		t.AppendRow(row)
	}
	return t, nil
}

func headerNames(record []string) []string {
	out := make([]string, len(record))
	seen := make(map[string]int, len(record))
	for i, h := range record {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		out[i] = h
	}
	return out
}

// inferScalar converts a cell that looks numeric or boolean. Numbers with a
// leading zero stay text so phone numbers and zero-padded codes survive.
func inferScalar(v string) interface{} {
	if len(v) > 1 && v[0] == '0' && v[1] != '.' {
		return v
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// WriteCSV renders t as CSV. Null cells are empty.
func WriteCSV(w io.Writer, t *models.Table, opts CSVWriteOptions) error {
	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}
	columns := t.Columns()
	if opts.WriteHeader {
		if err := cw.Write(columns); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write CSV header")
		}
	}
	record := make([]string, len(columns))
	for _, r := range t.Rows() {
		for i, c := range columns {
			record[i] = models.Stringify(r[c])
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to write CSV record")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush CSV")
	}
	return nil
}
