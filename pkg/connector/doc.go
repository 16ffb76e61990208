// Package connector is the I/O boundary of Strata. The reconciliation engine
// only sees tables; connectors load them from and write them to external
// systems.
//
// # Architecture Overview
//
//   - core: the Source and Destination interfaces plus in-memory
//     implementations used in tests.
//
//   - registry: a name-keyed factory registry. Connectors register
//     themselves in init(); a pipeline selects one with `type:` in its
//     connector block.
//
//   - sources: csv, json, sql (postgres, mysql, sqlite), gsheets and
//     mongodb.
//
//   - destinations: csv, json, sql, gsheets, avro, kafka, s3 and gcs.
//
//   - shared: helpers used by several connectors: CSV and compressed file
//     handling (tabular), SQL dialects (sqldb) and the Sheets client (sheets).
//
// # Configuration
//
// Every connector receives a config.ConnectorConfig and decodes its
// free-form options into a typed struct with ConnectorConfig.Decode:
//
//	sources:
//	  - name: crm
//	    connector:
//	      type: postgres
//	      dsn: ${CRM_DSN}
//	      query: SELECT email, phone, city FROM contacts
//
// Sources and destinations open their clients lazily, so building one never
// touches the network. Load and Write honour the connector timeout.
//
// # Usage
//
//	import _ "github.com/ajitpratap0/strata/pkg/connector/sources"
//
//	src, err := registry.CreateSource(cfg)
//	if err != nil {
//		return err
//	}
//	defer src.Close(ctx)
//	table, err := src.Load(ctx)
package connector
