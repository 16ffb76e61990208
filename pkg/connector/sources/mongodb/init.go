package mongodb

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("mongodb", func(cfg *config.ConnectorConfig) (core.Source, error) {
		return NewMongoSource(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "mongodb",
		Type:        core.ConnectorTypeSource,
		Description: "Documents of a MongoDB collection matching an extended JSON filter",
		Options:     []string{"uri*", "database*", "collection*", "filter", "limit"},
	})
}
