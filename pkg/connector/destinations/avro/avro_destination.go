// Package avro provides the Avro object container file destination.
package avro

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/linkedin/goavro/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/tabular"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// AvroDestination writes a table as an Avro OCF file. Every field is a
// nullable union of its inferred type; datetimes are stored as RFC 3339
// strings.
type AvroDestination struct {
	opts   config.AvroDestinationConfig
	logger *zap.Logger
}

// NewAvroDestination creates an Avro destination from its connector configuration.
func NewAvroDestination(cfg *config.ConnectorConfig) (*AvroDestination, error) {
	opts := config.DefaultAvroDestinationConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "avro destination: option \"path\" is required")
	}
	switch opts.Codec {
	case "", "none":
		opts.Codec = goavro.CompressionNullLabel
	case goavro.CompressionNullLabel, goavro.CompressionDeflateLabel, goavro.CompressionSnappyLabel:
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "avro destination: unsupported codec %q (want null, deflate or snappy)", opts.Codec)
	}
	if opts.RecordName == "" {
		opts.RecordName = cfg.Name
	}
	return &AvroDestination{
		opts:   opts,
		logger: logger.Get().With(zap.String("connector", "avro"), zap.String("path", opts.Path)),
	}, nil
}

// field maps one table column onto an Avro record field
type field struct {
	column string
	name   string
	typ    string
}

// Schema derives the record schema for t. Column names are sanitized into
// valid Avro names, with numeric suffixes resolving collisions.
func Schema(t *models.Table, namespace, record string) (string, []field, error) {
	fields := make([]field, 0, t.ColumnCount())
	used := make(map[string]bool, t.ColumnCount())
	decl := make([]map[string]interface{}, 0, t.ColumnCount())

	for _, c := range t.Columns() {
		name := sanitize(c)
		for i := 2; used[name]; i++ {
			name = sanitize(c) + "_" + strconv.Itoa(i)
		}
		used[name] = true

		typ := avroType(t.InferFieldType(c))
		fields = append(fields, field{column: c, name: name, typ: typ})
		decl = append(decl, map[string]interface{}{
			"name":    name,
			"type":    []interface{}{"null", typ},
			"default": nil,
		})
	}

	schema := map[string]interface{}{
		"type":   "record",
		"name":   sanitize(record),
		"fields": decl,
	}
	if namespace != "" {
		schema["namespace"] = namespace
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return "", nil, errors.Wrap(err, errors.ErrorTypeData, "failed to encode Avro schema")
	}
	return string(raw), fields, nil
}

func avroType(ft models.FieldType) string {
	switch ft {
	case models.FieldTypeInteger:
		return "long"
	case models.FieldTypeFloat:
		return "double"
	case models.FieldTypeBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// sanitize turns s into a valid Avro name: letters, digits and underscores,
// not starting with a digit.
func sanitize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "field"
	}
	return b.String()
}

func native(typ string, v interface{}) interface{} {
	if models.IsNull(v) {
		return nil
	}
	v = models.NormalizeValue(v)
	switch typ {
	case "double":
		if i, ok := v.(int64); ok {
			v = float64(i)
		}
	case "string":
		v = models.Stringify(v)
	}
	return goavro.Union(typ, v)
}

// Write renders t into the configured file.
func (d *AvroDestination) Write(ctx context.Context, t *models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	schema, fields, err := Schema(t, d.opts.Namespace, d.opts.RecordName)
	if err != nil {
		return err
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "invalid Avro schema")
	}

	f, err := tabular.CreateFile(d.opts.Path, "none", d.opts.CreateDirs)
	if err != nil {
		return err
	}
	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               f,
		Codec:           codec,
		CompressionName: d.opts.Codec,
	})
	if err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create Avro writer")
	}

	records := make([]interface{}, 0, t.Len())
	for _, r := range t.Rows() {
		rec := make(map[string]interface{}, len(fields))
		for _, fd := range fields {
			rec[fd.name] = native(fd.typ, r[fd.column])
		}
		records = append(records, rec)
	}
	if len(records) > 0 {
		if err := ocf.Append(records); err != nil {
			_ = f.Close()
			return errors.Wrap(err, errors.ErrorTypeData, "failed to append Avro records")
		}
	}
	if err := f.Close(); err != nil {
		return err
	}

	d.logger.Info("avro written",
		zap.Int("rows", t.Len()),
		zap.String("codec", d.opts.Codec),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Close is a no-op; Write closes the file.
func (d *AvroDestination) Close(context.Context) error { return nil }
