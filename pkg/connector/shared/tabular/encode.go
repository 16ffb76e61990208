package tabular

import (
	"strings"

	"github.com/ajitpratap0/strata/pkg/compression"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/pool"
)

// Format is the document layout of an encoded table
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat resolves a configured document format; empty means CSV.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatCSV, nil
	case "ndjson", "lines":
		return FormatJSONL, nil
	case FormatCSV, FormatJSON, FormatJSONL:
		return f, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unsupported format %q (want csv, json or jsonl)", name)
	}
}

// ContentType returns the MIME type of an encoded document.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatJSONL:
		return "application/x-ndjson"
	default:
		return "text/csv"
	}
}

// Encode renders t in format f and compresses it with alg.
func Encode(t *models.Table, f Format, alg compression.Algorithm) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)
	w, err := compression.NewWriter(buf, alg, compression.Default)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		err = json.EncodeTable(w, json.FormatArray, t)
	case FormatJSONL:
		err = json.EncodeTable(w, json.FormatLines, t)
	default:
		err = WriteCSV(w, t, CSVWriteOptions{Delimiter: ',', WriteHeader: true})
	}
	if err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to finish encoding")
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
