package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/businesslike/lessonplay/internal/migrations"
)

// SQLiteBackend keeps values in the kv table, one JSONB document per key.
// NewSQLiteBackend migrates the schema before first use.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(ctx context.Context, db *sql.DB) (*SQLiteBackend, error) {
	if err := migrations.Run(ctx, db); err != nil {
		return nil, fmt.Errorf("migrating progress schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data string
	err := b.db.QueryRowContext(ctx,
		`SELECT json(data) FROM kv WHERE key = ?`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(data), true, nil
}

func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO kv (key, data) VALUES (?, jsonb(?))
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data,
		   updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		key, string(value),
	)
	return err
}

func (b *SQLiteBackend) Ping(ctx context.Context) error { return b.db.PingContext(ctx) }

func (b *SQLiteBackend) Close() error { return b.db.Close() }
