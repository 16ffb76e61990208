// Package json provides the JSON file destination connector.
package json

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/tabular"
	"github.com/ajitpratap0/strata/pkg/errors"
	jsonx "github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// JSONDestination writes a table as a JSON document. Object keys follow the
// table's column order.
type JSONDestination struct {
	opts   config.JSONDestinationConfig
	format jsonx.Format
	logger *zap.Logger
}

// NewJSONDestination creates a JSON destination from its connector configuration.
func NewJSONDestination(cfg *config.ConnectorConfig) (*JSONDestination, error) {
	opts := config.DefaultJSONDestinationConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "json destination: option \"path\" is required")
	}
	format, err := jsonx.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	return &JSONDestination{
		opts:   opts,
		format: format,
		logger: logger.Get().With(zap.String("connector", "json"), zap.String("path", opts.Path)),
	}, nil
}

// Write renders t into the configured file.
func (d *JSONDestination) Write(ctx context.Context, t *models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	f, err := tabular.CreateFile(d.opts.Path, d.opts.Compression, d.opts.CreateDirs)
	if err != nil {
		return err
	}
	if err := jsonx.EncodeTable(f, d.format, t); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write "+d.opts.Path)
	}
	if err := f.Close(); err != nil {
		return err
	}

	d.logger.Info("json written",
		zap.Int("rows", t.Len()),
		zap.String("format", string(d.format)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Close is a no-op; Write closes the file.
func (d *JSONDestination) Close(context.Context) error { return nil }
