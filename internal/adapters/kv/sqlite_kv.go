package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-distance-service/internal/platform/obs"
	"strings"
)

// SQLite backed key-value store over the kv_store table.
type SqliteKV struct {
	DB *sql.DB
}

func NewSqliteKV(db *sql.DB) *SqliteKV {
	return &SqliteKV{DB: db}
}

func (s *SqliteKV) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "kv.sqlite.Get")(&err)

	if s.DB == nil {
		return "", false, errors.New("sqlite kv: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("get sqlite kv: key must not be empty")
	}

	var value string
	err = s.DB.QueryRowContext(ctx, `SELECT store_value FROM kv_store WHERE store_key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get sqlite kv %q: %w", key, err)
	}

	return value, true, nil
}

func (s *SqliteKV) Set(ctx context.Context, key, value string) error {
	if s.DB == nil {
		return errors.New("sqlite kv: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("set sqlite kv: key must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO kv_store (
        store_key,
        store_value
    )
    VALUES (?, ?);
	`, key, value)
	if err != nil {
		return fmt.Errorf("set sqlite kv %q: %w", key, err)
	}

	return nil
}

func (s *SqliteKV) Remove(ctx context.Context, key string) error {
	if s.DB == nil {
		return errors.New("sqlite kv: db is nil")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE store_key = ?;`, key); err != nil {
		return fmt.Errorf("remove sqlite kv %q: %w", key, err)
	}

	return nil
}
