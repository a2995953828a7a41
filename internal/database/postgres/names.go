package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
)

// NameRepository implements database.NameStore on PostgreSQL.
type NameRepository struct {
	pool *Pool
}

// NewNameRepository creates a name repository on an already migrated pool.
func NewNameRepository(pool *Pool) *NameRepository {
	return &NameRepository{pool: pool}
}

// Open is the database.NameStoreOpener for the postgres backend. It connects
// and applies pending migrations.
func Open(ctx context.Context, cfg *config.NamingConfig) (database.NameStore, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return NewNameRepository(pool), nil
}

// Close closes the underlying pool.
func (r *NameRepository) Close() error {
	return r.pool.Close()
}

// GetName returns the name for a cluster id, nil if unnamed.
func (r *NameRepository) GetName(ctx context.Context, clusterID int) (*database.ClusterName, error) {
	var name database.ClusterName
	err := r.pool.db.QueryRowContext(ctx, `
		SELECT cluster_id, name, run_id, updated_at FROM cluster_names WHERE cluster_id = $1
	`, clusterID).Scan(&name.ClusterID, &name.Name, &name.RunID, &name.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cluster name: %w", err)
	}
	return &name, nil
}

// ListNames returns every stored name keyed by cluster id.
func (r *NameRepository) ListNames(ctx context.Context) (map[int]database.ClusterName, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT cluster_id, name, run_id, updated_at FROM cluster_names`)
	if err != nil {
		return nil, fmt.Errorf("list cluster names: %w", err)
	}
	defer rows.Close()

	names := make(map[int]database.ClusterName)
	for rows.Next() {
		var name database.ClusterName
		if err := rows.Scan(&name.ClusterID, &name.Name, &name.RunID, &name.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cluster name: %w", err)
		}
		names[name.ClusterID] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cluster names: %w", err)
	}
	return names, nil
}

// SetName upserts the name of one cluster id.
func (r *NameRepository) SetName(ctx context.Context, name database.ClusterName) error {
	updatedAt := name.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO cluster_names (cluster_id, name, run_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cluster_id) DO UPDATE SET
			name = EXCLUDED.name,
			run_id = EXCLUDED.run_id,
			updated_at = EXCLUDED.updated_at
	`, name.ClusterID, name.Name, name.RunID, updatedAt)
	if err != nil {
		return fmt.Errorf("set cluster name: %w", err)
	}
	return nil
}
