package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/photo-faces/internal/config"
)

// NameStoreOpener opens a naming backend from configuration.
type NameStoreOpener func(ctx context.Context, cfg *config.NamingConfig) (NameStore, error)

var (
	nameStoreOpeners = make(map[string]NameStoreOpener)
	openersMu        sync.RWMutex
)

// RegisterNameStore registers a naming backend constructor under a backend name.
// Backend packages are registered by the caller to avoid import cycles.
func RegisterNameStore(backend string, opener NameStoreOpener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	nameStoreOpeners[backend] = opener
}

// RegisteredNameBackends returns the registered backend names, sorted.
func RegisteredNameBackends() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()
	names := make([]string, 0, len(nameStoreOpeners))
	for name := range nameStoreOpeners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenNameStore opens the backend selected by cfg.Backend.
func OpenNameStore(ctx context.Context, cfg *config.NamingConfig) (NameStore, error) {
	openersMu.RLock()
	opener, ok := nameStoreOpeners[cfg.Backend]
	openersMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("naming backend %q not registered", cfg.Backend)
	}
	store, err := opener(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s naming store: %w", cfg.Backend, err)
	}
	return store, nil
}
