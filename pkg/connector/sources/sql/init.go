package sql

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	factory := func(cfg *config.ConnectorConfig) (core.Source, error) {
		return NewSQLSource(cfg)
	}
	_ = registry.RegisterSource("sql", factory)
	// Driver-named aliases so `type: postgres` works without a driver option
	for _, alias := range []string{"postgres", "mysql", "sqlite"} {
		driver := alias
		_ = registry.RegisterSource(alias, func(cfg *config.ConnectorConfig) (core.Source, error) {
			if cfg.String("driver", "") == "" {
				clone := *cfg
				clone.Options = make(map[string]interface{}, len(cfg.Options)+1)
				for k, v := range cfg.Options {
					clone.Options[k] = v
				}
				clone.Options["driver"] = driver
				cfg = &clone
			}
			return factory(cfg)
		})
	}

	registry.Describe(&registry.ConnectorInfo{
		Name:        "sql",
		Type:        core.ConnectorTypeSource,
		Description: "Table or query result from PostgreSQL, MySQL or SQLite",
		Options:     []string{"driver*", "dsn*", "table", "query"},
	})
}
