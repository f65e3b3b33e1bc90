package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-distance-service/internal/domain"
	"strings"
)

// SQL-backed implementation of the EntityRepository port.
type SQLEntityRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSqliteEntityRepository(db *sql.DB) *SQLEntityRepository {
	return &SQLEntityRepository{DB: db, Dialect: SQLite}
}

func NewPostgresEntityRepository(db *sql.DB) *SQLEntityRepository {
	return &SQLEntityRepository{DB: db, Dialect: Postgres}
}

func (s *SQLEntityRepository) bind(n int) string {
	if s.Dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Return all entities of the given kind.
func (s *SQLEntityRepository) ListEntities(ctx context.Context, kind domain.EntityKind) ([]domain.Entity, error) {
	if s.DB == nil {
		return nil, errors.New("entity repository: DB is nil")
	}

	query := fmt.Sprintf(`
	SELECT
		id,
		kind,
		name,
		address
	FROM entities
	WHERE kind = %s
	ORDER BY id;
	`, s.bind(1))

	rows, err := s.DB.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list entities: query entities table: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows, "list entities")
}

// Return the entities with the given IDs, ordered by ID.
func (s *SQLEntityRepository) GetEntities(ctx context.Context, ids []string) ([]domain.Entity, error) {
	if s.DB == nil {
		return nil, errors.New("entity repository: DB is nil")
	}

	seen := map[string]struct{}{}
	args := make([]any, 0, len(ids))
	ph := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, id)
		ph = append(ph, s.bind(len(args)))
	}

	if len(args) == 0 {
		return []domain.Entity{}, nil
	}

	// Only the placeholder structure is interpolated; all values remain parameterized.
	query := fmt.Sprintf(`
	SELECT
		id,
		kind,
		name,
		address
	FROM entities
	WHERE id IN (%s)
	ORDER BY id;
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get entities: query entities table: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows, "get entities")
}

func scanEntities(rows *sql.Rows, op string) ([]domain.Entity, error) {
	entities := make([]domain.Entity, 0, 64)
	for rows.Next() {
		var e domain.Entity
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Name, &e.Address); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		e.Kind = domain.EntityKind(kind)
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}

	return entities, nil
}
