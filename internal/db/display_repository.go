package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DisplayModelRepository maps game object display ids to model keys.
type DisplayModelRepository struct {
	pool *pgxpool.Pool
}

// NewDisplayModelRepository creates a new display model repository
func NewDisplayModelRepository(pool *pgxpool.Pool) *DisplayModelRepository {
	return &DisplayModelRepository{pool: pool}
}

// LoadAll loads every display id mapping.
func (r *DisplayModelRepository) LoadAll(ctx context.Context) (map[uint32]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT display_id, model_key FROM gameobject_display_models`)
	if err != nil {
		return nil, fmt.Errorf("loading display models: %w", err)
	}
	defer rows.Close()

	out := make(map[uint32]string)
	for rows.Next() {
		var (
			id  int32
			key string
		)
		if err := rows.Scan(&id, &key); err != nil {
			return nil, fmt.Errorf("scanning display model row: %w", err)
		}
		out[uint32(id)] = key
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating display model rows: %w", err)
	}
	return out, nil
}

// Upsert stores the model key of a display id.
func (r *DisplayModelRepository) Upsert(ctx context.Context, displayID uint32, modelKey string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO gameobject_display_models (display_id, model_key) VALUES ($1, $2)
		 ON CONFLICT (display_id) DO UPDATE SET model_key = EXCLUDED.model_key`,
		int32(displayID), modelKey,
	)
	if err != nil {
		return fmt.Errorf("upserting display model %d: %w", displayID, err)
	}
	return nil
}

// Delete removes a display id mapping.
func (r *DisplayModelRepository) Delete(ctx context.Context, displayID uint32) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM gameobject_display_models WHERE display_id = $1`, int32(displayID)); err != nil {
		return fmt.Errorf("deleting display model %d: %w", displayID, err)
	}
	return nil
}
