// Package config loads and validates Strata pipeline definitions.
//
// A pipeline is a YAML document with four sections:
//
//   - sources: named connectors whose tables are staged into the namespace
//   - layers: union and merge layers, materialised in declaration order
//   - outputs: layers handed to destination connectors
//   - settings: run-wide switches
//
// ${VAR} and ${VAR:-fallback} references are replaced by environment values
// before the YAML is parsed, so credentials never need to live in the file.
//
// Example:
//
//	version: "1"
//	sources:
//	  - name: crm
//	    connector:
//	      type: csv
//	      path: data/crm.csv
//	  - name: sheet
//	    connector:
//	      type: gsheets
//	      spreadsheet_id: ${SHEET_ID}
//	layers:
//	  - name: contacts
//	    type: merge
//	    sources: [crm, sheet]
//	    merge_keys: [email]
//	    merge_type: outer
//	    conflict_resolution:
//	      city: {strategy: concatenate, separator: " | "}
//	outputs:
//	  - name: contacts_csv
//	    layer: contacts
//	    destination:
//	      type: csv
//	      path: out/contacts.csv
//
// Connector options are free-form; each connector decodes them into its own
// typed options struct (see CSVSourceConfig and friends) with
// ConnectorConfig.Decode.
//
// Validate reports every problem of a pipeline at once, before any source is
// loaded. An unknown conflict resolution strategy is reported on its own as
// an unknown_strategy error.
package config
