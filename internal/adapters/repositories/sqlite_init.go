package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"market-distance-service/internal/domain"
	"os"
	"strings"
)

// Dialect selects placeholder syntax for statements shared by SQLite and Postgres.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Initialize the database schema. The DDL is valid for both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createEntitiesQuery := `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT ''
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat DOUBLE PRECISION NOT NULL,
        lng DOUBLE PRECISION NOT NULL
    );
	`

	createKVQuery := `
	CREATE TABLE IF NOT EXISTS kv_store (
        store_key TEXT PRIMARY KEY,
        store_value TEXT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_entities_kind
    ON entities(kind, id);
	`

	statements := []string{
		createEntitiesQuery,
		createGeocodeCacheQuery,
		createKVQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type EntitySeed struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Populate the database with market and vendor data from a JSON file.
// Vendors may have an empty address; their distance renders as unknown.
func SeedFromJSON(db *sql.DB, jsonPath string, dialect Dialect) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed entities: read %q: %w", jsonPath, err)
	}

	var data []EntitySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed entities: parse json: %w", err)
	}

	rows := make([]domain.Entity, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return fmt.Errorf("seed entities: item at index %d: id cannot be empty", i+1)
		}

		kind, ok := domain.ParseEntityKind(item.Kind)
		if !ok {
			return fmt.Errorf("seed entities: item id=%s: unknown kind %q", id, item.Kind)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return fmt.Errorf("seed entities: item id=%s: name cannot be empty", id)
		}

		rows = append(rows, domain.Entity{
			ID:      id,
			Kind:    kind,
			Name:    name,
			Address: strings.TrimSpace(item.Address),
		})
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed entities: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
	INSERT INTO entities (id, kind, name, address)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET kind = excluded.kind,
		name = excluded.name,
		address = excluded.address;
	`
	if dialect == Postgres {
		query = `
		INSERT INTO entities (id, kind, name, address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET kind = EXCLUDED.kind,
			name = EXCLUDED.name,
			address = EXCLUDED.address;
		`
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed entities: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range rows {
		if _, err := stmt.Exec(e.ID, string(e.Kind), e.Name, e.Address); err != nil {
			return fmt.Errorf("seed entities: insert id=%s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed entities: commit tx: %w", err)
	}

	return nil
}
