package app

import (
	"fmt"
	"os"

	"github.com/specialistvlad/pathfinder/internal/config"
	"github.com/specialistvlad/pathfinder/internal/graphstore"
)

// graphStore is what the configured backends provide.
type graphStore interface {
	graphstore.Store
	graphstore.Writer
}

// openStore opens the configured backend. The returned close function is
// never nil.
func openStore(cfg config.Store) (graphStore, func() error, error) {
	switch cfg.Kind {
	case config.StoreSQLite:
		db, err := graphstore.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.StoreDir:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("could not create graph directory: %w", err)
		}
		dir, err := graphstore.NewDir(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return dir, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}
