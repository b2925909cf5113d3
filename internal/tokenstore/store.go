// Package tokenstore persists the single opaque auth token used by the gateway.
//
// Get never fails: storage errors are logged and reported as an absent token.
// No expiry is tracked here; the server decides whether a token is valid.
package tokenstore

import (
	"context"
	"fmt"

	"github.com/R3E-Network/courseclient/internal/config"
	"github.com/R3E-Network/courseclient/internal/logging"
)

// DefaultKey is the storage key holding the token.
const DefaultKey = "token"

// Store reads and writes the persisted auth token.
type Store interface {
	// Get returns the token and whether one is present.
	Get(ctx context.Context) (string, bool)
	// Set overwrites the persisted token.
	Set(ctx context.Context, token string) error
	// Clear removes the persisted token.
	Clear(ctx context.Context) error
}

// Open returns the store selected by cfg.
func Open(cfg config.TokenConfig, logger *logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}

	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(cfg.Path, key, logger)
	case config.DriverRedis:
		return NewRedisStoreFromURL(cfg.RedisURL, key, logger)
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("tokenstore: unknown driver %q", cfg.Driver)
	}
}
