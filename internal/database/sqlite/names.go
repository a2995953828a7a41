// Package sqlite stores cluster names in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS cluster_names (
	cluster_id INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	run_id     TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
)`

// NameStore implements database.NameStore on SQLite.
type NameStore struct {
	db *sql.DB
}

// Open is the database.NameStoreOpener for the sqlite backend.
func Open(ctx context.Context, cfg *config.NamingConfig) (database.NameStore, error) {
	return NewNameStore(ctx, cfg.SQLitePath)
}

// NewNameStore opens (creating if needed) the names database at dbPath.
func NewNameStore(ctx context.Context, dbPath string) (*NameStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("Opened SQLite name store", "path", dbPath)
	return &NameStore{db: db}, nil
}

// Close closes the database connection.
func (s *NameStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing name store: %w", err)
	}
	return nil
}

// GetName returns the name for a cluster id, nil if unnamed.
func (s *NameStore) GetName(ctx context.Context, clusterID int) (*database.ClusterName, error) {
	var name database.ClusterName
	var updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT cluster_id, name, run_id, updated_at FROM cluster_names WHERE cluster_id = ?
	`, clusterID).Scan(&name.ClusterID, &name.Name, &name.RunID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cluster name: %w", err)
	}
	name.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &name, nil
}

// ListNames returns every stored name keyed by cluster id.
func (s *NameStore) ListNames(ctx context.Context) (map[int]database.ClusterName, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cluster_id, name, run_id, updated_at FROM cluster_names`)
	if err != nil {
		return nil, fmt.Errorf("list cluster names: %w", err)
	}
	defer rows.Close()

	names := make(map[int]database.ClusterName)
	for rows.Next() {
		var name database.ClusterName
		var updatedAt string
		if err := rows.Scan(&name.ClusterID, &name.Name, &name.RunID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan cluster name: %w", err)
		}
		name.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		names[name.ClusterID] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cluster names: %w", err)
	}
	return names, nil
}

// SetName upserts the name of one cluster id.
func (s *NameStore) SetName(ctx context.Context, name database.ClusterName) error {
	updatedAt := name.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cluster_names (cluster_id, name, run_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(cluster_id) DO UPDATE SET
			name = excluded.name,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, name.ClusterID, name.Name, name.RunID, updatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set cluster name: %w", err)
	}
	return nil
}
