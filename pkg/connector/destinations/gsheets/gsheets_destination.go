// Package gsheets provides the Google Sheets destination connector.
package gsheets

import (
	"context"
	"time"

	"go.uber.org/zap"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/sheets"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// SheetsDestination replaces the contents of one tab with a table: a header
// row followed by one row per record.
type SheetsDestination struct {
	opts   config.GoogleSheetsConfig
	svc    *sheetsapi.Service
	logger *zap.Logger
}

// NewSheetsDestination creates a Google Sheets destination from its
// connector configuration.
func NewSheetsDestination(cfg *config.ConnectorConfig) (*SheetsDestination, error) {
	opts := config.DefaultGoogleSheetsConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.SpreadsheetID == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "gsheets destination: option \"spreadsheet_id\" is required")
	}
	if opts.Sheet == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "gsheets destination: option \"sheet\" must not be empty")
	}
	return &SheetsDestination{
		opts: opts,
		logger: logger.Get().With(
			zap.String("connector", "gsheets"),
			zap.String("spreadsheet", opts.SpreadsheetID),
			zap.String("sheet", opts.Sheet)),
	}, nil
}

// Write clears the tab and uploads t.
func (d *SheetsDestination) Write(ctx context.Context, t *models.Table) error {
	if d.svc == nil {
		svc, err := sheets.NewService(ctx, d.opts, false, d.logger)
		if err != nil {
			return err
		}
		d.svc = svc
	}
	start := time.Now()
	tab := sheets.A1(d.opts.Sheet)

	if _, err := d.svc.Spreadsheets.Values.Clear(d.opts.SpreadsheetID, tab, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to clear sheet "+d.opts.Sheet)
	}

	body := &sheetsapi.ValueRange{Values: Values(t)}
	if _, err := d.svc.Spreadsheets.Values.Update(d.opts.SpreadsheetID, tab+"!A1", body).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to update sheet "+d.opts.Sheet)
	}

	d.logger.Info("sheet written",
		zap.Int("rows", t.Len()),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Values lays t out as a grid: the header row, then one row per record.
// Nulls become empty cells and times are written as RFC 3339 text.
func Values(t *models.Table) [][]interface{} {
	columns := t.Columns()
	out := make([][]interface{}, 0, t.Len()+1)

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	out = append(out, header)

	for _, r := range t.Rows() {
		row := make([]interface{}, len(columns))
		for i, c := range columns {
			switch v := models.NormalizeValue(r[c]).(type) {
			case int64, bool, string:
				row[i] = v
			case float64:
				if models.IsNull(v) {
					row[i] = ""
				} else {
					row[i] = v
				}
			default:
				row[i] = models.Stringify(v)
			}
		}
		out = append(out, row)
	}
	return out
}

// Close is a no-op; the API client holds no persistent connection.
func (d *SheetsDestination) Close(context.Context) error { return nil }
