package connector_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/registry"

	// Import connectors to register them
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations/json"
	_ "github.com/ajitpratap0/strata/pkg/connector/sources/csv"
)

// Example demonstrates creating and using connectors via the registry.
func Example() {
	dir, err := os.MkdirTemp("", "strata-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "crm.csv")
	if err := os.WriteFile(in, []byte("email,city\na@x.id,Medan\nb@x.id,\n"), 0o600); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	source, err := registry.CreateSource(config.NewConnectorConfig("crm", "csv").Set("path", in))
	if err != nil {
		log.Fatal(err)
	}
	defer source.Close(ctx)

	table, err := source.Load(ctx)
	if err != nil {
		log.Fatal(err)
	}

	out := filepath.Join(dir, "crm.jsonl")
	dest, err := registry.CreateDestination(config.NewConnectorConfig("out", "json").
		Set("path", out).
		Set("format", "lines"))
	if err != nil {
		log.Fatal(err)
	}
	if err := dest.Write(ctx, table); err != nil {
		log.Fatal(err)
	}
	if err := dest.Close(ctx); err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(data))

	// Output:
	// {"email":"a@x.id","city":"Medan"}
	// {"email":"b@x.id","city":null}
}
