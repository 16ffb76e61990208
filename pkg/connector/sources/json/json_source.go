// Package json provides the JSON file source connector.
package json

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/tabular"
	"github.com/ajitpratap0/strata/pkg/errors"
	jsonx "github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// JSONSource reads an array of objects or one object per line
type JSONSource struct {
	name   string
	opts   config.JSONSourceConfig
	format jsonx.Format
	logger *zap.Logger
}

// NewJSONSource creates a JSON source from its connector configuration.
func NewJSONSource(cfg *config.ConnectorConfig) (*JSONSource, error) {
	opts := config.DefaultJSONSourceConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "json source: option \"path\" is required")
	}
	format, err := jsonx.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	return &JSONSource{
		name:   cfg.Name,
		opts:   opts,
		format: format,
		logger: logger.Get().With(zap.String("connector", "json"), zap.String("path", opts.Path)),
	}, nil
}

// Load decodes the file into a table.
func (s *JSONSource) Load(ctx context.Context) (*models.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := tabular.OpenFile(s.opts.Path, s.opts.Compression)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := jsonx.DecodeTable(f, s.format, s.name)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read "+s.opts.Path)
	}
	s.logger.Debug("json loaded", zap.Int("rows", t.Len()), zap.Int("columns", t.ColumnCount()))
	return t, nil
}

// Close is a no-op
func (s *JSONSource) Close(context.Context) error { return nil }
