package gsheets

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("gsheets", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewSheetsDestination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "gsheets",
		Type:        core.ConnectorTypeDestination,
		Description: "Google Sheets tab, cleared and rewritten on every run",
		Options:     []string{"spreadsheet_id*", "sheet", "credentials_file", "endpoint", "requests_per_minute", "max_retries"},
	})
}
