package csv

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("csv", func(cfg *config.ConnectorConfig) (core.Source, error) {
		return NewCSVSource(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        core.ConnectorTypeSource,
		Description: "Delimited text file, optionally compressed",
		Options:     []string{"path*", "delimiter", "has_header", "null_values", "trim_spaces", "infer_types", "compression", "sheet"},
	})
}
