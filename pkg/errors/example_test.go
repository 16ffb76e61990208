// Package errors provides examples of structured error handling in Strata.
package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeConfig, "merge layer requires at least 2 sources").
		WithDetail("layer", "enriched_contacts").
		WithDetail("sources", 1)

	fmt.Println(err.Error())
	fmt.Println(errors.IsFatal(err))

	// Output:
	// config: merge layer requires at least 2 sources
	// true
}

// ExampleWrap shows how wrapping keeps the original cause reachable.
func ExampleWrap() {
	err := errors.Wrap(io.EOF, errors.ErrorTypeFile, "failed to read CSV file").
		WithDetail("file", "leads.csv")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("file error")
	}
	if errors.Is(err, io.EOF) {
		fmt.Println("caused by EOF")
	}

	// Output:
	// file error
	// caused by EOF
}

// ExampleIsFatal shows which failures abort a run.
func ExampleIsFatal() {
	mismatch := errors.New(errors.ErrorTypeKeyMismatch, "merge keys missing on right side")
	custom := errors.New(errors.ErrorTypeCustomResolver, "resolver exploded")

	fmt.Println(errors.IsFatal(mismatch))
	fmt.Println(errors.IsFatal(custom))

	// Output:
	// false
	// true
}
