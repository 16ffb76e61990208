// Package core defines the contracts between the pipeline and its
// connectors. Sources hand the pipeline a whole table; destinations receive
// one. The engine itself never performs I/O.
package core

import (
	"context"

	"github.com/ajitpratap0/strata/pkg/models"
)

// ConnectorType represents the direction of a connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Source is the interface that all source connectors must implement
type Source interface {
	// Load reads the complete source into a table. Column order follows the
	// source's natural order (file header, query projection, sheet header).
	Load(ctx context.Context) (*models.Table, error)
	// Close releases any connection held by the source
	Close(ctx context.Context) error
}

// Destination is the interface that all destination connectors must implement
type Destination interface {
	// Write persists the table. A destination is written at most once per run.
	Write(ctx context.Context, table *models.Table) error
	// Close flushes and releases resources
	Close(ctx context.Context) error
}

// Closer adapts a function to the Close half of the interfaces
type Closer func(ctx context.Context) error

// Close calls f
func (f Closer) Close(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// NopClose is a Close implementation for connectors without resources
func NopClose(context.Context) error { return nil }

// TableSource is an in-memory Source, used for dry runs and tests
type TableSource struct {
	Table *models.Table
}

// Load returns a copy of the wrapped table
func (s *TableSource) Load(context.Context) (*models.Table, error) {
	if s.Table == nil {
		return models.NewTable(""), nil
	}
	return s.Table.Clone(), nil
}

// Close is a no-op
func (s *TableSource) Close(context.Context) error { return nil }

// TableSink is an in-memory Destination that records what it was given
type TableSink struct {
	Tables []*models.Table
	Closed bool
}

// Write records a copy of the table
func (s *TableSink) Write(_ context.Context, t *models.Table) error {
	s.Tables = append(s.Tables, t.Clone())
	return nil
}

// Close marks the sink closed
func (s *TableSink) Close(context.Context) error {
	s.Closed = true
	return nil
}

// Last returns the most recently written table, or nil
func (s *TableSink) Last() *models.Table {
	if len(s.Tables) == 0 {
		return nil
	}
	return s.Tables[len(s.Tables)-1]
}
