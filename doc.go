// Package strata reconciles records that describe the same entities across
// many sources: CRM exports, spreadsheets, databases and document stores.
//
// A pipeline is declared in YAML. Sources are staged into a namespace of
// named tables, union and merge layers are materialised from that namespace
// in declaration order, and outputs hand the resulting tables to
// destination connectors.
//
// # Architecture
//
// Staging loads each source through its connector, canonicalises column
// names, applies column mappings and include/exclude lists, runs field
// normalizers (Indonesian phone numbers, e-mail addresses) and tags rows
// with the _source they came from.
//
// Layers are the reconciliation engine:
//
//   - union stacks its sources, aligning columns by name
//   - merge joins its sources pairwise on merge keys (inner, left, right,
//     outer), suffixes exclusive columns with _<source>, and resolves
//     conflicting values with first, last, preferSource, concatenate, max,
//     min or a registered custom resolver
//
// Both can finish with transformations, most importantly composite key
// deduplication on normalised e-mail and phone, which either drops or
// merges duplicates.
//
// # Quick Start
//
//	p, err := config.Load("pipeline.yaml")
//	if err != nil {
//	    return err
//	}
//	runner, err := pipeline.New(p, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Run(ctx)
//
// or from the command line:
//
//	strata validate --config pipeline.yaml
//	strata run --config pipeline.yaml --dry-run
//	strata analyze --config pipeline.yaml --layer contacts
//
// # Key Packages
//
//	internal/pipeline - Runs a pipeline end to end
//	pkg/layer         - Union and merge layers, transformations, executor
//	pkg/dedup         - Composite key deduplication and duplicate analysis
//	pkg/resolve       - Conflict resolution strategies and custom resolvers
//	pkg/normalize     - Field and column name normalizers
//	pkg/connector     - Source and destination connectors
//	pkg/config        - Pipeline definitions and validation
//	pkg/errors        - Typed errors
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus metrics
//	pkg/observability - OpenTelemetry tracing
//
// # Connectors
//
// Sources: csv, json, sql (postgres, mysql, sqlite), gsheets, mongodb.
//
// Destinations: csv, json, sql (postgres, mysql, sqlite), gsheets, avro,
// kafka, s3, gcs.
//
// Run "strata list" for every connector with its options.
package strata
