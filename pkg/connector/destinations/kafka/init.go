package kafka

import (
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/core"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("kafka", func(cfg *config.ConnectorConfig) (core.Destination, error) {
		return NewKafkaDestination(cfg)
	})

	registry.Describe(&registry.ConnectorInfo{
		Name:        "kafka",
		Type:        core.ConnectorTypeDestination,
		Description: "One JSON message per row on a Kafka topic",
		Options:     []string{"brokers*", "topic*", "key_column", "client_id", "acks", "compression"},
	})
}
