package ports

import (
	"context"
	"market-distance-service/internal/domain"
)

// Port: a boundary for retrieving markets and vendors from a data source.
type EntityRepository interface {
	// Retrieve all entities of one kind, ordered by ID.
	ListEntities(ctx context.Context, kind domain.EntityKind) ([]domain.Entity, error)
	// Retrieve entities by ID; unknown IDs are skipped.
	GetEntities(ctx context.Context, ids []string) ([]domain.Entity, error)
}
