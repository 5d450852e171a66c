package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, dir := range []string{DialectPostgres, DialectSQLite} {
		files, err := fs.Glob(Migrations, dir+"/*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, files, dir)
	}
}

func TestUp_PassesDialectDirectory(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Up(context.Background(), nil, DialectPostgres))
	assert.Equal(t, "postgres", gotDir)

	require.NoError(t, Up(context.Background(), nil, DialectSQLite))
	assert.Equal(t, "sqlite", gotDir)
}

func TestUp_WrapsError(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := Up(context.Background(), nil, DialectPostgres)
	require.ErrorIs(t, err, boom)
}

func TestUp_UnknownDialect(t *testing.T) {
	require.Error(t, Up(context.Background(), nil, "mysql"))
}

func TestUp_SQLiteCreatesDocumentsTable(t *testing.T) {
	db, err := sql.Open("sqlite", "file:migrations_up?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Up(context.Background(), db, DialectSQLite))

	_, err = db.Exec(`INSERT INTO documents (collection, id, body) VALUES ('plans', 'p1', '{"userId":"u1"}')`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM documents WHERE json_extract(body, '$.userId') = 'u1'`).Scan(&n))
	assert.Equal(t, 1, n)

	_, err = db.Exec(`INSERT INTO documents (collection, id, body) VALUES ('plans', 'p2', 'not json')`)
	assert.Error(t, err)
}
