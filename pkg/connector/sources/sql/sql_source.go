// Package sql provides the relational source connector for PostgreSQL
// (pgx), MySQL and SQLite.
package sql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/sqldb"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// SQLSource loads a table or the result of a query
type SQLSource struct {
	name    string
	opts    config.SQLSourceConfig
	dialect *sqldb.Dialect
	timeout time.Duration
	db      *sql.DB
	logger  *zap.Logger
}

// NewSQLSource creates a SQL source from its connector configuration. The
// connection is opened on first Load.
func NewSQLSource(cfg *config.ConnectorConfig) (*SQLSource, error) {
	var opts config.SQLSourceConfig
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	dialect, err := sqldb.Lookup(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.DSN == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "sql source: option \"dsn\" is required")
	}
	if (opts.Table == "") == (strings.TrimSpace(opts.Query) == "") {
		return nil, errors.New(errors.ErrorTypeConfig, "sql source: exactly one of \"table\" and \"query\" is required")
	}
	return &SQLSource{
		name:    cfg.Name,
		opts:    opts,
		dialect: dialect,
		timeout: cfg.GetTimeout(),
		logger: logger.Get().With(
			zap.String("connector", "sql"),
			zap.String("driver", dialect.Name)),
	}, nil
}

func (s *SQLSource) statement() string {
	if s.opts.Table != "" {
		return s.dialect.SelectAll(s.opts.Table)
	}
	return s.opts.Query
}

// Load runs the query and returns its result set.
func (s *SQLSource) Load(ctx context.Context) (*models.Table, error) {
	if s.db == nil {
		db, err := sqldb.Open(s.dialect, s.opts.DSN)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	t, err := sqldb.QueryTable(ctx, s.db, s.name, s.statement())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("sql loaded",
		zap.Int("rows", t.Len()),
		zap.Duration("duration", time.Since(start)))
	return t, nil
}

// Close closes the connection pool.
func (s *SQLSource) Close(context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
