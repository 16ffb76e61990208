package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/models"
)

func TestLookup(t *testing.T) {
	for name, want := range map[string]*Dialect{"postgresql": Postgres, "MySQL": MySQL, "sqlite3": SQLite} {
		got, err := Lookup(name)
		require.NoError(t, err)
		assert.Same(t, want, got)
	}
	_, err := Lookup("oracle")
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	assert.Equal(t, `"public"."con""tacts"`, Postgres.Quote(`public.con"tacts`))
	assert.Equal(t, "`contacts`", MySQL.Quote("contacts"))

	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES ($1, $2), ($3, $4)`, Postgres.Insert("t", []string{"a", "b"}, 2))
	assert.Equal(t, "INSERT INTO `t` (`a`) VALUES (?), (?)", MySQL.Insert("t", []string{"a"}, 2))
	assert.Equal(t, `DELETE FROM "t"`, SQLite.Truncate("t"))

	tbl := models.FromRows("t", []string{"id", "score", "name"}, []models.Row{{"id": int64(1), "score": 1.5, "name": "x"}})
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "t" ("id" BIGINT, "score" DOUBLE PRECISION, "name" TEXT)`,
		Postgres.CreateTable("t", tbl))

	assert.Equal(t, 500, Postgres.BatchRows(500, 10))
	assert.Equal(t, 3276, SQLite.BatchRows(5000, 10))
	assert.Equal(t, 1, SQLite.BatchRows(10, 100000))
}

func TestInsertTableBatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tbl := models.FromRows("t", []string{"a", "b"}, []models.Row{
		{"a": "x", "b": int64(1)},
		{"a": nil, "b": int64(2)},
		{"a": "z"},
	})
	mock.ExpectExec(`INSERT INTO "t" \("a", "b"\) VALUES \(\$1, \$2\), \(\$3, \$4\)`).
		WithArgs("x", int64(1), nil, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "t" \("a", "b"\) VALUES \(\$1, \$2\)`).
		WithArgs("z", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := InsertTable(context.Background(), db, Postgres, "t", tbl, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryTableSQLite(t *testing.T) {
	db, err := Open(SQLite, filepath.Join(t.TempDir(), "q.db"))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = db.ExecContext(ctx, `CREATE TABLE c (email TEXT, visits INTEGER, score REAL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO c VALUES ('a@x.id', 3, NULL), ('b@x.id', NULL, 2.5)`)
	require.NoError(t, err)

	got, err := QueryTable(ctx, db, "c", SQLite.SelectAll("c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "visits", "score"}, got.Columns())
	require.Equal(t, 2, got.Len())
	assert.Equal(t, int64(3), got.Value(0, "visits"))
	assert.Nil(t, got.Value(0, "score"))
	assert.Equal(t, 2.5, got.Value(1, "score"))
}

func TestQueryTableMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "contacts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created"}).
			AddRow(int64(1), []byte("Budi"), ts))

	got, err := QueryTable(context.Background(), db, "contacts", Postgres.SelectAll("contacts"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Value(0, "id"))
	assert.Equal(t, "Budi", got.Value(0, "name"))
	assert.Equal(t, ts, got.Value(0, "created"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
