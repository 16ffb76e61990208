package gsheets

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("gsheets", func(cfg *config.ConnectorConfig) (core.Source, error) {
		return NewSheetsSource(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "gsheets",
		Type:        core.ConnectorTypeSource,
		Description: "Google Sheets tabs stacked into one table, tagged with _sheet_name",
		Options:     []string{"spreadsheet_id*", "credentials_file", "sheets", "exclude_sheets", "add_sheet_column", "endpoint", "requests_per_minute", "max_retries"},
	})
}
