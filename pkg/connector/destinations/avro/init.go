package avro

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("avro", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewAvroDestination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "avro",
		Type:        core.ConnectorTypeDestination,
		Description: "Avro object container file with a schema inferred from the table",
		Options:     []string{"path*", "namespace", "record_name", "codec", "create_dirs"},
	})
}
