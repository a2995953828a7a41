// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kozaktomas/photo-faces/internal/database"
)

// MockClusterReader is a mock implementation of database.ClusterReader
type MockClusterReader struct {
	mu     sync.RWMutex
	result *database.ClusteringResult

	// Error injection
	ResultError error
}

// NewMockClusterReader creates a mock reader serving the given result.
// A nil result behaves like a missing clusters file.
func NewMockClusterReader(result *database.ClusteringResult) *MockClusterReader {
	return &MockClusterReader{result: result}
}

// SetResult replaces the served result
func (m *MockClusterReader) SetResult(result *database.ClusteringResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = result
}

// Result returns the stored clustering result
func (m *MockClusterReader) Result(ctx context.Context) (*database.ClusteringResult, error) {
	if m.ResultError != nil {
		return nil, m.ResultError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil, database.ErrNoClusteringResult
	}
	return m.result, nil
}

// MockNameStore is a mock implementation of database.NameStore
type MockNameStore struct {
	mu     sync.RWMutex
	names  map[int]database.ClusterName
	closed bool

	// Error injection
	GetError   error
	ListError  error
	SetError   error
	CloseError error
}

// NewMockNameStore creates a new empty mock name store
func NewMockNameStore() *MockNameStore {
	return &MockNameStore{names: make(map[int]database.ClusterName)}
}

// AddName seeds a name without going through SetName
func (m *MockNameStore) AddName(name database.ClusterName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[name.ClusterID] = name
}

// GetName returns the name for a cluster id
func (m *MockNameStore) GetName(ctx context.Context, clusterID int) (*database.ClusterName, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.names[clusterID]
	if !ok {
		return nil, nil
	}
	return &name, nil
}

// ListNames returns a copy of all stored names
func (m *MockNameStore) ListNames(ctx context.Context) (map[int]database.ClusterName, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]database.ClusterName, len(m.names))
	for id, name := range m.names {
		out[id] = name
	}
	return out, nil
}

// SetName upserts a name
func (m *MockNameStore) SetName(ctx context.Context, name database.ClusterName) error {
	if m.SetError != nil {
		return m.SetError
	}
	if name.UpdatedAt.IsZero() {
		name.UpdatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[name.ClusterID] = name
	return nil
}

// Close marks the store closed
func (m *MockNameStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseError
}

// Closed reports whether Close was called
func (m *MockNameStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Count returns the number of stored names
func (m *MockNameStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}

// Compile-time interface checks
var (
	_ database.ClusterReader = (*MockClusterReader)(nil)
	_ database.NameStore     = (*MockNameStore)(nil)
)
