//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/photo-faces/internal/config"
	"github.com/kozaktomas/photo-faces/internal/database"
)

func setupTestContainer(t *testing.T) (*config.NamingConfig, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.NamingConfig{
		Backend:      config.NamingBackendPostgres,
		DatabaseURL:  fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	cleanup := func() {
		container.Terminate(ctx)
	}

	return cfg, cleanup
}

func TestNameRepository(t *testing.T) {
	cfg, cleanup := setupTestContainer(t)
	if cfg == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	store, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	t.Run("GetMissing", func(t *testing.T) {
		name, err := store.GetName(ctx, 99)
		if err != nil {
			t.Fatalf("GetName failed: %v", err)
		}
		if name != nil {
			t.Errorf("expected nil, got %+v", name)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		if err := store.SetName(ctx, database.ClusterName{ClusterID: 3, Name: "Alice", RunID: "run-a"}); err != nil {
			t.Fatalf("SetName failed: %v", err)
		}
		if err := store.SetName(ctx, database.ClusterName{ClusterID: 3, Name: "Alicia", RunID: "run-b"}); err != nil {
			t.Fatalf("SetName (overwrite) failed: %v", err)
		}

		names, err := store.ListNames(ctx)
		if err != nil {
			t.Fatalf("ListNames failed: %v", err)
		}
		if len(names) != 1 {
			t.Fatalf("expected 1 name, got %d", len(names))
		}
		if names[3].Name != "Alicia" || names[3].RunID != "run-b" {
			t.Errorf("expected Alicia/run-b, got %+v", names[3])
		}
	})

	t.Run("MigrationsIdempotent", func(t *testing.T) {
		pool, err := NewPool(ctx, cfg)
		if err != nil {
			t.Fatalf("NewPool failed: %v", err)
		}
		defer pool.Close()

		if err := pool.Migrate(ctx); err != nil {
			t.Fatalf("second Migrate failed: %v", err)
		}
		versions, err := pool.MigrationsApplied(ctx)
		if err != nil {
			t.Fatalf("MigrationsApplied failed: %v", err)
		}
		if len(versions) != 1 || versions[0] != "001_cluster_names.sql" {
			t.Errorf("unexpected migrations: %v", versions)
		}
	})
}
