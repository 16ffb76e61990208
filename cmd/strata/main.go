package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	// Import all available connectors to register them
	_ "github.com/ajitpratap0/strata/pkg/connector/destinations"
	_ "github.com/ajitpratap0/strata/pkg/connector/sources"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
