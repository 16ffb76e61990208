package sql

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	factory := func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewSQLDestination(cfg)
	}
	_ = registry.RegisterDestination("sql", factory)
	for _, alias := range []string{"postgres", "mysql", "sqlite"} {
		driver := alias
		_ = registry.RegisterDestination(alias, func(cfg *config.ConnectorConfig) (core.Destination, error) {
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
		Type:        core.ConnectorTypeDestination,
		Description: "Table in PostgreSQL, MySQL or SQLite, written in one transaction",
		Options:     []string{"driver*", "dsn*", "table*", "batch_size", "create_table", "truncate"},
	})
}
