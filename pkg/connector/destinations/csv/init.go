package csv

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("csv", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewCSVDestination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "csv",
		Type:        core.ConnectorTypeDestination,
		Description: "Delimited text file, optionally compressed",
		Options:     []string{"path*", "delimiter", "write_header", "compression", "create_dirs"},
	})
}
