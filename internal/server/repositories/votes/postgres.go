package votes

import (
	"context"
	"fmt"

	"github.com/patchmemory/kindmesh/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Cast(ctx context.Context, voterID, targetID string) error {
	query :=
		`INSERT INTO demotion_votes (voter_id, target_id)
		 VALUES ($1, $2)
		 ON CONFLICT (voter_id, target_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, voterID, targetID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CountForTarget(ctx context.Context, targetID string) (int, error) {
	query :=
		`SELECT count(*) FROM demotion_votes
		 WHERE target_id = $1
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, targetID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) VoterIDs(ctx context.Context, targetID string) ([]string, error) {
	query :=
		`SELECT voter_id FROM demotion_votes
		 WHERE target_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, targetID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var voters []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		voters = append(voters, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return voters, nil
}

func (r *PostgresRepository) ClearForTarget(ctx context.Context, targetID string) error {
	query :=
		`DELETE FROM demotion_votes
		 WHERE target_id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, targetID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
