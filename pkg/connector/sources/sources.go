// Package sources registers every built-in source connector. Import it for
// its side effects.
package sources

import (
	// Import all source connectors to trigger init() registration
	_ "github.com/ajitpratap0/strata/pkg/connector/sources/csv"
	_ "github.com/ajitpratap0/strata/pkg/connector/sources/gsheets"
	_ "github.com/ajitpratap0/strata/pkg/connector/sources/json"
	_ "github.com/ajitpratap0/strata/pkg/connector/sources/mongodb"
	_ "github.com/ajitpratap0/strata/pkg/connector/sources/sql"
)
