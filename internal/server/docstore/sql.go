package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/dbx"
	"github.com/dmitrijs2005/tradejournal/internal/server/migrations"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name   string
	get    string
	upsert string
	update string
	delete string
	list   string
	// find is a format string receiving the already validated field name.
	find string
}

var postgresDialect = dialect{
	name:   migrations.DialectPostgres,
	get:    `SELECT body FROM documents WHERE collection = $1 AND id = $2`,
	upsert: `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb) ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = CURRENT_TIMESTAMP`,
	update: `UPDATE documents SET body = body || $1::jsonb, updated_at = CURRENT_TIMESTAMP WHERE collection = $2 AND id = $3`,
	delete: `DELETE FROM documents WHERE collection = $1 AND id = $2`,
	list:   `SELECT body FROM documents WHERE collection = $1`,
	find:   `SELECT body FROM documents WHERE collection = $1 AND body->>'%s' = $2`,
}

var sqliteDialect = dialect{
	name:   migrations.DialectSQLite,
	get:    `SELECT body FROM documents WHERE collection = ? AND id = ?`,
	upsert: `INSERT INTO documents (collection, id, body) VALUES (?, ?, ?) ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
	update: `UPDATE documents SET body = json_patch(body, ?), updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`,
	delete: `DELETE FROM documents WHERE collection = ? AND id = ?`,
	list:   `SELECT body FROM documents WHERE collection = ?`,
	find:   `SELECT body FROM documents WHERE collection = ? AND json_extract(body, '$.%s') = ?`,
}

func dialectByName(name string) (dialect, error) {
	switch name {
	case migrations.DialectPostgres:
		return postgresDialect, nil
	case migrations.DialectSQLite:
		return sqliteDialect, nil
	}
	return dialect{}, fmt.Errorf("unsupported dialect %q", name)
}

// SQLStore keeps every document as a JSON body in the documents table.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an open database. The schema must already be migrated.
func NewSQLStore(db *sql.DB, dialectName string) (*SQLStore, error) {
	d, err := dialectByName(dialectName)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, s.dialect.get, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return body, nil
}

func (s *SQLStore) Set(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, collection, id, string(body)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, collection, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.delete, collection, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) Find(ctx context.Context, collection, field, value string) ([][]byte, error) {
	if err := checkFieldName(field); err != nil {
		return nil, err
	}
	return s.query(ctx, fmt.Sprintf(s.dialect.find, field), collection, value)
}

func (s *SQLStore) List(ctx context.Context, collection string) ([][]byte, error) {
	return s.query(ctx, s.dialect.list, collection)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *SQLStore) NewBatch() Batch {
	return &batch{commit: s.commit}
}

func (s *SQLStore) commit(ctx context.Context, ops []op) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, o := range ops {
			if err := s.apply(ctx, tx, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStore) apply(ctx context.Context, tx dbx.DBTX, o op) error {
	switch o.kind {
	case opSet:
		if _, err := tx.ExecContext(ctx, s.dialect.upsert, o.collection, o.id, string(o.body)); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	case opDelete:
		if _, err := tx.ExecContext(ctx, s.dialect.delete, o.collection, o.id); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	case opUpdate:
		res, err := tx.ExecContext(ctx, s.dialect.update, string(o.body), o.collection, o.id)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("update %s/%s: %w", o.collection, o.id, common.ErrorNotFound)
		}
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
