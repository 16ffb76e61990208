// Package json provides the JSON codec shared by file, message and object
// connectors. It is backed by goccy/go-json and keeps table column order
// when encoding rows.
package json

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/pool"
)

// Format selects how rows are laid out in a document
type Format string

const (
	// FormatArray writes a single JSON array of objects
	FormatArray Format = "array"
	// FormatLines writes one object per line (JSON Lines)
	FormatLines Format = "lines"
)

// ParseFormat resolves a configured format. The empty string is FormatArray;
// "jsonl" and "ndjson" are accepted for FormatLines.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "array":
		return FormatArray, nil
	case "lines", "jsonl", "ndjson":
		return FormatLines, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported JSON format %q (want array or lines)", name)
	}
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	return pool.GetBuffer()
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	pool.PutBuffer(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// AppendRow appends row as a JSON object whose keys follow columns. Absent
// cells are written as null.
func AppendRow(buf *bytes.Buffer, columns []string, row models.Row) error {
	buf.WriteByte('{')
	for i, c := range columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := gojson.Marshal(c)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := row[c]
		if models.IsNull(v) {
			buf.WriteString("null")
			continue
		}
		val, err := gojson.Marshal(models.NormalizeValue(v))
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "cannot encode column "+c)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

// MarshalRow encodes a single row as a JSON object.
func MarshalRow(columns []string, row models.Row) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := AppendRow(buf, columns, row); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// RowEncoder streams rows to a writer in either format
type RowEncoder struct {
	w       *bufio.Writer
	buf     *bytes.Buffer
	columns []string
	format  Format
	written int
}

// NewRowEncoder creates an encoder writing rows with the given columns.
func NewRowEncoder(w io.Writer, format Format, columns []string) *RowEncoder {
	e := &RowEncoder{
		w:       bufio.NewWriter(w),
		buf:     GetBuffer(),
		columns: columns,
		format:  format,
	}
	if format == FormatArray {
		e.w.WriteByte('[')
	}
	return e
}

// Encode writes one row.
func (e *RowEncoder) Encode(row models.Row) error {
	e.buf.Reset()
	if e.format == FormatArray && e.written > 0 {
		e.buf.WriteByte(',')
	}
	if err := AppendRow(e.buf, e.columns, row); err != nil {
		return err
	}
	if e.format == FormatLines {
		e.buf.WriteByte('\n')
	}
	e.written++
	_, err := e.w.Write(e.buf.Bytes())
	return err
}

// Close terminates the document and flushes. It does not close the
// underlying writer.
func (e *RowEncoder) Close() error {
	if e.format == FormatArray {
		e.w.WriteByte(']')
	}
	PutBuffer(e.buf)
	return e.w.Flush()
}

// EncodeTable writes every row of t.
func EncodeTable(w io.Writer, format Format, t *models.Table) error {
	enc := NewRowEncoder(w, format, t.Columns())
	for _, r := range t.Rows() {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return enc.Close()
}

// DecodeTable reads a document of objects into a table. Keys are added as
// columns in sorted order the first time they appear; numbers become int64
// when integral and float64 otherwise; nested arrays and objects are kept as
// their JSON text.
func DecodeTable(r io.Reader, format Format, name string) (*models.Table, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	t := models.NewTable(name)

	switch format {
	case FormatLines:
		for {
			var obj map[string]interface{}
			err := dec.Decode(&obj)
			if err == io.EOF {
				return t, nil
			}
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON line")
			}
			t.AppendRow(rowFrom(obj))
		}
	default:
		var objs []map[string]interface{}
		if err := dec.Decode(&objs); err != nil {
			if err == io.EOF {
				return t, nil
			}
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON array")
		}
		for _, obj := range objs {
			t.AppendRow(rowFrom(obj))
		}
		return t, nil
	}
}

func rowFrom(obj map[string]interface{}) models.Row {
	row := make(models.Row, len(obj))
	for k, v := range obj {
		row[k] = Scalar(v)
	}
	return row
}

// Scalar converts a decoded JSON value into a table scalar.
func Scalar(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case gojson.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case string, bool, float64, int64:
		return x
	case map[string]interface{}, []interface{}:
		raw, err := gojson.Marshal(x)
		if err != nil {
			return models.Stringify(x)
		}
		return string(raw)
	default:
		return models.NormalizeValue(x)
	}
}
