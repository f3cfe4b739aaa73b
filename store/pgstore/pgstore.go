// Package pgstore provides a Postgres-backed store.KV. Each key is one row
// of a key/value table; Mutate locks the single row for the duration of the
// read-modify-write. No statement ever touches more than one key, preserving
// the per-key-only atomicity the engine is designed against.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbook/finbook/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS finbook_kv (
	key   text PRIMARY KEY,
	value jsonb NOT NULL
)`

// Store is a Postgres-backed key/document store.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database at url and ensures the kv table exists.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure kv table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) Get(ctx context.Context, key string, v any) error {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM finbook_kv WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return json.Unmarshal(raw, v)
}

func (s *Store) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO finbook_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, raw)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Mutate(ctx context.Context, key string, fn func(raw []byte) ([]byte, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("mutate %s: %w", key, err)
	}
	defer tx.Rollback(ctx)

	var old []byte
	err = tx.QueryRow(ctx, `SELECT value FROM finbook_kv WHERE key = $1 FOR UPDATE`, key).Scan(&old)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("mutate %s: %w", key, err)
	}

	raw, err := fn(old)
	if err != nil {
		return err
	}
	if raw == nil {
		if _, err := tx.Exec(ctx, `DELETE FROM finbook_kv WHERE key = $1`, key); err != nil {
			return fmt.Errorf("mutate %s: %w", key, err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO finbook_kv (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, raw)
		if err != nil {
			return fmt.Errorf("mutate %s: %w", key, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM finbook_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM finbook_kv WHERE key LIKE $1 || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("keys %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

var _ store.KV = (*Store)(nil)
