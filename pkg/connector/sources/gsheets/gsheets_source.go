// Package gsheets provides the Google Sheets source connector.
package gsheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/sheets"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// SheetsSource reads one or more tabs of a spreadsheet. The first row of
// every tab is its header; tabs are stacked in spreadsheet order.
type SheetsSource struct {
	name   string
	opts   config.GoogleSheetsConfig
	svc    *sheetsapi.Service
	logger *zap.Logger
}

// NewSheetsSource creates a Google Sheets source from its connector
// configuration. The API client is created on first Load.
func NewSheetsSource(cfg *config.ConnectorConfig) (*SheetsSource, error) {
	opts := config.DefaultGoogleSheetsConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.SpreadsheetID == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "gsheets source: option \"spreadsheet_id\" is required")
	}
	return &SheetsSource{
		name: cfg.Name,
		opts: opts,
		logger: logger.Get().With(
			zap.String("connector", "gsheets"),
			zap.String("spreadsheet", opts.SpreadsheetID)),
	}, nil
}

// Load reads the selected tabs into a single table.
func (s *SheetsSource) Load(ctx context.Context) (*models.Table, error) {
	if s.svc == nil {
		svc, err := sheets.NewService(ctx, s.opts, true, s.logger)
		if err != nil {
			return nil, err
		}
		s.svc = svc
	}

	tabs, err := s.tabs(ctx)
	if err != nil {
		return nil, err
	}

	out := models.NewTable(s.name)
	for _, tab := range tabs {
		resp, err := s.svc.Spreadsheets.Values.Get(s.opts.SpreadsheetID, sheets.A1(tab)).Context(ctx).Do()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to read sheet "+tab)
		}
		n := appendTab(out, tab, resp.Values, s.opts.AddSheetColumn)
		s.logger.Debug("sheet loaded", zap.String("sheet", tab), zap.Int("rows", n))
	}
	return out, nil
}

func (s *SheetsSource) tabs(ctx context.Context) ([]string, error) {
	if len(s.opts.Sheets) > 0 {
		return s.opts.Sheets, nil
	}
	ss, err := s.svc.Spreadsheets.Get(s.opts.SpreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to list sheets")
	}
	exclude := make(map[string]bool, len(s.opts.ExcludeSheets))
	for _, e := range s.opts.ExcludeSheets {
		exclude[e] = true
	}
	var tabs []string
	for _, sh := range ss.Sheets {
		if sh.Properties == nil || exclude[sh.Properties.Title] {
			continue
		}
		tabs = append(tabs, sh.Properties.Title)
	}
	return tabs, nil
}

// appendTab appends the data rows of one tab and returns how many it added.
// Rows shorter than the header are padded with nulls; cells beyond the
// header are dropped.
func appendTab(t *models.Table, tab string, values [][]interface{}, tag bool) int {
	if len(values) == 0 {
		return 0
	}
	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		name := strings.TrimSpace(fmt.Sprint(h))
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		header[i] = name
		t.AddColumn(name)
	}
	if tag {
		t.AddColumn(models.SheetColumn)
	}

	for _, raw := range values[1:] {
		row := make(models.Row, len(header)+1)
		for i, h := range header {
			if i < len(raw) {
				if v := sheets.Cell(raw[i]); v != nil {
					row[h] = v
				}
			}
		}
		if tag {
			row[models.SheetColumn] = tab
		}
		t.AppendRow(row)
	}
	return len(values) - 1
}

// Close is a no-op; the API client holds no persistent connection.
func (s *SheetsSource) Close(context.Context) error { return nil }
