package store

import (
	"context"
	"fmt"

	"caselaw/config"
	"caselaw/internal/port"
)

// Open returns the document store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig) (port.CaseStore, error) {
	switch cfg.Backend {
	case "", "bolt":
		return NewBoltStore(cfg.Path, cfg.LockTimeout)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
