package database

import (
	"context"
)

// ClusterReader provides read-only access to the latest clustering result
type ClusterReader interface {
	// Result returns the current clustering result, ErrNoClusteringResult if none was built
	Result(ctx context.Context) (*ClusteringResult, error)
}

// NameReader provides read-only access to user assigned cluster names
type NameReader interface {
	// GetName returns the name for a cluster id, nil if the cluster is unnamed
	GetName(ctx context.Context, clusterID int) (*ClusterName, error)
	// ListNames returns every stored name keyed by cluster id
	ListNames(ctx context.Context) (map[int]ClusterName, error)
}

// NameWriter provides write access to cluster names
type NameWriter interface {
	NameReader

	// SetName inserts or replaces the name of a single cluster id
	SetName(ctx context.Context, name ClusterName) error
}

// NameStore is a NameWriter bound to an open backend
type NameStore interface {
	NameWriter

	Close() error
}
