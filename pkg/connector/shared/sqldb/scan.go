package sqldb

import (
	"context"
	"database/sql"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

// Querier is the subset of *sql.DB and *sql.Tx used for reading
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Execer is the subset of *sql.DB and *sql.Tx used for writing
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// QueryTable runs query and collects the result set into a table whose
// columns follow the projection order.
func QueryTable(ctx context.Context, q Querier, name, query string, args ...interface{}) (*models.Table, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read columns")
	}
	t := models.NewTable(name, cols...)

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to scan row")
		}
		row := make(models.Row, len(cols))
		for i, c := range cols {
			if v := models.NormalizeValue(values[i]); v != nil {
				row[c] = v
			}
		}
		t.AppendRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "row iteration failed")
	}
	return t, nil
}

// InsertTable writes every row of t into table in batches and returns the
// number of rows inserted.
func InsertTable(ctx context.Context, x Execer, d *Dialect, table string, t *models.Table, batchSize int) (int, error) {
	columns := t.Columns()
	if len(columns) == 0 || t.IsEmpty() {
		return 0, nil
	}
	batch := d.BatchRows(batchSize, len(columns))
	all := t.Rows()

	written := 0
	for start := 0; start < len(all); start += batch {
		end := start + batch
		if end > len(all) {
			end = len(all)
		}
		chunk := all[start:end]

		args := make([]interface{}, 0, len(chunk)*len(columns))
		for _, r := range chunk {
			for _, c := range columns {
				v := r[c]
				if models.IsNull(v) {
					args = append(args, nil)
					continue
				}
				args = append(args, models.NormalizeValue(v))
			}
		}
		if _, err := x.ExecContext(ctx, d.Insert(table, columns, len(chunk)), args...); err != nil {
			return written, errors.Wrap(err, errors.ErrorTypeQuery, "insert into "+table+" failed")
		}
		written += len(chunk)
	}
	return written, nil
}
