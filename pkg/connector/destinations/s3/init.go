package s3

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("s3", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewS3Destination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "s3",
		Type:        core.ConnectorTypeDestination,
		Description: "CSV or JSON object in an S3 or S3 compatible bucket",
		Options:     []string{"bucket*", "key*", "format", "compression", "region", "endpoint", "use_path_style"},
	})
}
