// Package csv provides the CSV file source connector.
package csv

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/tabular"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// CSVSource reads a whole CSV file into a table
type CSVSource struct {
	name   string
	opts   config.CSVSourceConfig
	read   tabular.CSVReadOptions
	logger *zap.Logger
}

// NewCSVSource creates a CSV source from its connector configuration.
func NewCSVSource(cfg *config.ConnectorConfig) (*CSVSource, error) {
	opts := config.DefaultCSVSourceConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "csv source: option \"path\" is required")
	}
	delim, err := tabular.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}

	return &CSVSource{
		name: cfg.Name,
		opts: opts,
		read: tabular.CSVReadOptions{
			Delimiter:  delim,
			HasHeader:  opts.HasHeader,
			NullValues: opts.NullValues,
			TrimSpaces: opts.TrimSpaces,
			InferTypes: opts.InferTypes,
		},
		logger: logger.Get().With(zap.String("connector", "csv"), zap.String("path", opts.Path)),
	}, nil
}

// Load reads the file. The context is only checked before opening; the
// read itself is bounded by the file size.
func (s *CSVSource) Load(ctx context.Context) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	f, err := tabular.OpenFile(s.opts.Path, s.opts.Compression)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := tabular.ReadCSV(f, s.name, s.read)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "failed to read "+s.opts.Path)
	}

	if s.opts.Sheet != "" {
		t.AddColumn(models.SheetColumn)
		for _, r := range t.Rows() {
			r[models.SheetColumn] = s.opts.Sheet
		}
	}

	s.logger.Debug("csv loaded",
		zap.Int("rows", t.Len()),
		zap.Int("columns", t.ColumnCount()),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

// Close is a no-op; the file is closed by Load.
func (s *CSVSource) Close(context.Context) error { return nil }
