// Package sql provides the relational destination connector for
// PostgreSQL (pgx), MySQL and SQLite.
package sql

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/sqldb"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// SQLDestination inserts a table's rows into a database table. Creating,
// truncating and inserting happen in one transaction.
type SQLDestination struct {
	opts    config.SQLDestinationConfig
	dialect *sqldb.Dialect
	timeout time.Duration
	db      *sql.DB
	logger  *zap.Logger
}

// NewSQLDestination creates a SQL destination from its connector
// configuration. The connection is opened on first Write.
func NewSQLDestination(cfg *config.ConnectorConfig) (*SQLDestination, error) {
	opts := config.DefaultSQLDestinationConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	dialect, err := sqldb.Lookup(opts.Driver)
	if err != nil {
		return nil, err
	}
	if opts.DSN == "" || opts.Table == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "sql destination: options \"dsn\" and \"table\" are required")
	}
	if opts.BatchSize <= 0 {
		return nil, errors.Newf(errors.ErrorTypeConfig, "sql destination: batch_size must be positive, got %d", opts.BatchSize)
	}
	return &SQLDestination{
		opts:    opts,
		dialect: dialect,
		timeout: cfg.GetTimeout(),
		logger: logger.Get().With(
			zap.String("connector", "sql"),
			zap.String("driver", dialect.Name),
			zap.String("table", opts.Table)),
	}, nil
}

// Write stores every row of t.
func (d *SQLDestination) Write(ctx context.Context, t *models.Table) error {
	if d.db == nil {
		db, err := sqldb.Open(d.dialect, d.opts.DSN)
		if err != nil {
			return err
		}
		d.db = db
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	start := time.Now()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to begin transaction")
	}
	written, err := d.write(ctx, tx, t)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeQuery, "failed to commit")
	}

	d.logger.Info("sql written",
		zap.Int("rows", written),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (d *SQLDestination) write(ctx context.Context, tx *sql.Tx, t *models.Table) (int, error) {
	if d.opts.CreateTable && t.ColumnCount() > 0 {
		if _, err := tx.ExecContext(ctx, d.dialect.CreateTable(d.opts.Table, t)); err != nil {
			return 0, errors.Wrap(err, errors.ErrorTypeQuery, "failed to create table "+d.opts.Table)
		}
	}
	if d.opts.Truncate {
		if _, err := tx.ExecContext(ctx, d.dialect.Truncate(d.opts.Table)); err != nil {
			return 0, errors.Wrap(err, errors.ErrorTypeQuery, "failed to truncate "+d.opts.Table)
		}
	}
	return sqldb.InsertTable(ctx, tx, d.dialect, d.opts.Table, t, d.opts.BatchSize)
}

// Close closes the connection pool.
func (d *SQLDestination) Close(context.Context) error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}
