package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-distance-service/internal/platform/obs"
	"strings"
)

// SQLKV is a Postgres-backed key-value store over the kv_store table.
type SQLKV struct {
	DB *sql.DB
}

func NewSQLKV(db *sql.DB) *SQLKV {
	return &SQLKV{DB: db}
}

func (s *SQLKV) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.sql.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("sql kv: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("get sql kv: key must not be empty")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT store_value FROM kv_store WHERE store_key = $1;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get sql kv %q: %w", key, err)
	}

	return value, true, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	if s.DB == nil {
		return errors.New("sql kv: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("set sql kv: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO kv_store (store_key, store_value)
    VALUES ($1, $2)
	ON CONFLICT (store_key) DO UPDATE
	SET store_value = EXCLUDED.store_value;
	`, key, value)
	if err != nil {
		return fmt.Errorf("set sql kv %q: %w", key, err)
	}

	return nil
}

func (s *SQLKV) Remove(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sql kv: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE store_key = $1;`, key); err != nil {
		return fmt.Errorf("remove sql kv %q: %w", key, err)
	}

	return nil
}
