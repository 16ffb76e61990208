// Package sqldb holds the dialect differences between the relational
// connectors: driver names, identifier quoting, placeholders and column
// types. Drivers are registered by importing this package.
package sqldb

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

// Dialect describes one SQL flavour
type Dialect struct {
	// Name is the configured driver name
	Name string
	// DriverName is the database/sql driver the dialect opens
	DriverName string
	// MaxParams bounds the placeholders in one statement
	MaxParams int

	quote       byte
	numbered    bool
	truncateSQL string
	types       map[models.FieldType]string
}

var (
	Postgres = &Dialect{
		Name:        "postgres",
		DriverName:  "pgx",
		MaxParams:   65535,
		quote:       '"',
		numbered:    true,
		truncateSQL: "TRUNCATE TABLE %s",
		types: map[models.FieldType]string{
			models.FieldTypeInteger:  "BIGINT",
			models.FieldTypeFloat:    "DOUBLE PRECISION",
			models.FieldTypeBoolean:  "BOOLEAN",
			models.FieldTypeDatetime: "TIMESTAMPTZ",
			models.FieldTypeText:     "TEXT",
		},
	}
	MySQL = &Dialect{
		Name:        "mysql",
		DriverName:  "mysql",
		MaxParams:   65535,
		quote:       '`',
		truncateSQL: "TRUNCATE TABLE %s",
		types: map[models.FieldType]string{
			models.FieldTypeInteger:  "BIGINT",
			models.FieldTypeFloat:    "DOUBLE",
			models.FieldTypeBoolean:  "BOOLEAN",
			models.FieldTypeDatetime: "DATETIME(6)",
			models.FieldTypeText:     "TEXT",
		},
	}
	SQLite = &Dialect{
		Name:        "sqlite",
		DriverName:  "sqlite",
		MaxParams:   32766,
		quote:       '"',
		truncateSQL: "DELETE FROM %s",
		types: map[models.FieldType]string{
			models.FieldTypeInteger:  "INTEGER",
			models.FieldTypeFloat:    "REAL",
			models.FieldTypeBoolean:  "BOOLEAN",
			models.FieldTypeDatetime: "TIMESTAMP",
			models.FieldTypeText:     "TEXT",
		},
	}
)

// Lookup resolves a configured driver name.
func Lookup(name string) (*Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported SQL driver %q (want postgres, mysql or sqlite)", name)
	}
}

// Open opens a pooled connection handle. No connection is made until first use.
func Open(d *Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "open "+d.Name)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	return db, nil
}

// Quote quotes an identifier. Dotted names are quoted per part so
// schema.table works.
func (d *Dialect) Quote(ident string) string {
	parts := strings.Split(ident, ".")
	q := string(d.quote)
	for i, p := range parts {
		parts[i] = q + strings.ReplaceAll(p, q, q+q) + q
	}
	return strings.Join(parts, ".")
}

// Placeholder returns the i-th (1-based) bind parameter.
func (d *Dialect) Placeholder(i int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// ColumnType maps an inferred field type to a column type.
func (d *Dialect) ColumnType(ft models.FieldType) string {
	if t, ok := d.types[ft]; ok {
		return t
	}
	return d.types[models.FieldTypeText]
}

// SelectAll returns the query reading every row of table.
func (d *Dialect) SelectAll(table string) string {
	return "SELECT * FROM " + d.Quote(table)
}

// CreateTable returns a CREATE TABLE IF NOT EXISTS statement for t's
// columns, typed from their values.
func (d *Dialect) CreateTable(table string, t *models.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(d.Quote(table))
	b.WriteString(" (")
	for i, c := range t.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(c))
		b.WriteByte(' ')
		b.WriteString(d.ColumnType(t.InferFieldType(c)))
	}
	b.WriteByte(')')
	return b.String()
}

// Truncate returns the statement emptying table.
func (d *Dialect) Truncate(table string) string {
	return fmt.Sprintf(d.truncateSQL, d.Quote(table))
}

// Insert returns a multi-row INSERT for rows rows of the given columns.
func (d *Dialect) Insert(table string, columns []string, rows int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.Quote(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(c))
	}
	b.WriteString(") VALUES ")
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for i := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// BatchRows caps batchSize so a statement stays under MaxParams.
func (d *Dialect) BatchRows(batchSize, columns int) int {
	if columns == 0 {
		return batchSize
	}
	if limit := d.MaxParams / columns; batchSize <= 0 || batchSize > limit {
		batchSize = limit
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return batchSize
}
