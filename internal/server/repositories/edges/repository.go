// Package edges persists the append-only directed-edge log between
// account nodes. Edges are immutable once written.
package edges

import (
	"context"

	"github.com/patchmemory/kindmesh/internal/server/models"
)

type Repository interface {
	// Create appends one edge to the log.
	Create(ctx context.Context, edge *models.Edge) (*models.Edge, error)

	// ListByTarget returns the edges of the given kind pointing at the
	// target account, oldest first. Used for audit and provenance.
	ListByTarget(ctx context.Context, targetID string, kind models.EdgeKind) ([]models.Edge, error)
}
