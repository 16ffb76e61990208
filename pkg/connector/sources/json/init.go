package json

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("json", func(cfg *config.ConnectorConfig) (core.Source, error) {
		return NewJSONSource(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "json",
		Type:        core.ConnectorTypeSource,
		Description: "JSON array or JSON Lines file, optionally compressed",
		Options:     []string{"path*", "format", "compression"},
	})
}
