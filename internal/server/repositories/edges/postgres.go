package edges

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/patchmemory/kindmesh/internal/dbx"
	"github.com/patchmemory/kindmesh/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, edge *models.Edge) (*models.Edge, error) {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO edges (id, kind, source_id, target_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		edge.ID, edge.Kind, edge.SourceID, edge.TargetID).Scan(&edge.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return edge, nil
}

func (r *PostgresRepository) ListByTarget(ctx context.Context, targetID string, kind models.EdgeKind) ([]models.Edge, error) {
	query :=
		`SELECT id, kind, source_id, target_id, created_at FROM edges
		 WHERE target_id = $1 AND kind = $2
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, targetID, kind)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.ID, &e.Kind, &e.SourceID, &e.TargetID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
