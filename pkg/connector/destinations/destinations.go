// Package destinations registers every built-in destination connector.
// Import it for its side effects.
package destinations

import (
	// Import all destination connectors to trigger init() registration
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/avro"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/csv"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/gcs"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/gsheets"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/json"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/kafka"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/s3"
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/sql"
)
