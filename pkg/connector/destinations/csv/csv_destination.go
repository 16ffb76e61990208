// Package csv provides the CSV file destination connector.
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

// CSVDestination writes a table to a CSV file, replacing its contents
type CSVDestination struct {
	opts   config.CSVDestinationConfig
	write  tabular.CSVWriteOptions
	logger *zap.Logger
}

// NewCSVDestination creates a CSV destination from its connector configuration.
func NewCSVDestination(cfg *config.ConnectorConfig) (*CSVDestination, error) {
	opts := config.DefaultCSVDestinationConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "csv destination: option \"path\" is required")
	}
	delim, err := tabular.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}
	return &CSVDestination{
		opts:   opts,
		write:  tabular.CSVWriteOptions{Delimiter: delim, WriteHeader: opts.WriteHeader},
		logger: logger.Get().With(zap.String("connector", "csv"), zap.String("path", opts.Path)),
	}, nil
}

// Write renders t into the configured file.
func (d *CSVDestination) Write(ctx context.Context, t *models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	f, err := tabular.CreateFile(d.opts.Path, d.opts.Compression, d.opts.CreateDirs)
	if err != nil {
		return err
	}
	if err := tabular.WriteCSV(f, t, d.write); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	d.logger.Info("csv written",
		zap.Int("rows", t.Len()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Close is a no-op; Write closes the file.
func (d *CSVDestination) Close(context.Context) error { return nil }
