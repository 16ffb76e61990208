package gcs

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("gcs", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewGCSDestination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "gcs",
		Type:        core.ConnectorTypeDestination,
		Description: "CSV or JSON object in a Google Cloud Storage bucket",
		Options:     []string{"bucket*", "key*", "format", "compression", "credentials_file", "endpoint"},
	})
}
