package json

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("json", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewJSONDestination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "json",
		Type:        core.ConnectorTypeDestination,
		Description: "JSON array or JSON lines file, optionally compressed",
		Options:     []string{"path*", "format", "compression", "create_dirs"},
	})
}
