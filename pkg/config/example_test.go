package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/strata/pkg/config"
)

// ExampleParse demonstrates parsing and validating a pipeline definition.
func ExampleParse() {
	p, err := config.Parse([]byte(`
version: "1"
sources:
  - name: crm
    connector: {type: csv, path: crm.csv}
  - name: sheet
    connector: {type: csv, path: sheet.csv}
layers:
  - name: contacts
    type: merge
    sources: [crm, sheet]
    merge_keys: [email]
    conflict_resolution:
      city: {strategy: concatenate}
outputs:
  - name: out
    layer: contacts
    destination: {type: json, path: out.json}
`))
	if err != nil {
		log.Fatal(err)
	}
	if err := p.Validate(nil); err != nil {
		log.Fatal(err)
	}

	fmt.Println(p.SourceNames())
	fmt.Println(p.Layers[0].Name, p.Layers[0].Type)

	// Output:
	// [crm sheet]
	// contacts merge
}

// ExampleConnectorConfig_Decode shows how a connector reads its typed options.
func ExampleConnectorConfig_Decode() {
	cfg := config.NewConnectorConfig("crm", "csv").
		Set("path", "data/crm.csv").
		Set("delimiter", ";")

	opts := config.DefaultCSVSourceConfig()
	if err := cfg.Decode(&opts); err != nil {
		log.Fatal(err)
	}

	fmt.Println(opts.Path, opts.Delimiter, opts.HasHeader)

	// Output:
	// data/crm.csv ; true
}
