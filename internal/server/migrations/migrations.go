// Package migrations embeds the schema of the SQL-backed document store and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Dialect names understood by Up.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies all pending migrations for dialect.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	var gooseDialect string
	switch dialect {
	case DialectPostgres:
		gooseDialect = "pgx"
	case DialectSQLite:
		gooseDialect = "sqlite3"
	default:
		return fmt.Errorf("unsupported migration dialect %q", dialect)
	}

	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, dialect); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}
