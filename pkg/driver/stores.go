package driver

import (
	"context"
	"fmt"

	"bizdsl/interpreter-go/pkg/store"
)

// OpenStore builds the store selected by cfg. The returned close function is
// never nil.
func OpenStore(ctx context.Context, cfg *Config) (store.Store, func() error, error) {
	switch cfg.Store {
	case StoreFile, "":
		return store.NewFileStore(cfg.ScriptsDir), func() error { return nil }, nil
	case StoreSQLite:
		st, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("config: unsupported store %q", cfg.Store)
	}
}
