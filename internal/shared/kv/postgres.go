package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresStore persiste valores JSON na tabela kv_store (key text PK, value jsonb, updated_at)
type PostgresStore[T any] struct {
	DB *sql.DB
}

func NewPostgresStore[T any](db *sql.DB) *PostgresStore[T] {
	return &PostgresStore[T]{DB: db}
}

func (s *PostgresStore[T]) Load(ctx context.Context, key string, def T) (T, error) {
	var b []byte
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key=$1`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return decode(b, def)
}

// Save faz upsert por chave (ON CONFLICT) para manter um único registro por slot
func (s *PostgresStore[T]) Save(ctx context.Context, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
		  value      = EXCLUDED.value,
		  updated_at = EXCLUDED.updated_at
	`
	_, err = s.DB.ExecContext(ctx, q, key, string(b))
	return err
}
