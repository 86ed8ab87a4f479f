package cli

import (
	"context"
	"fmt"

	"yeardiary/internal/auth"
	"yeardiary/internal/config"
	"yeardiary/internal/db"
	"yeardiary/internal/diary"
	"yeardiary/internal/store/gormstore"
	"yeardiary/internal/store/memory"
	"yeardiary/internal/store/sqlstore"

	"github.com/charmbracelet/log"
)

type backend interface {
	diary.Store
	auth.UserStore
}

// openBackend connects the configured store and optionally creates its
// schema. The returned close func is never nil.
func openBackend(ctx context.Context, cfg config.Config, logger *log.Logger, migrate bool) (backend, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, entries are lost on restart")
		return memory.New(), noop, nil

	case config.BackendGorm:
		gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connect %s: %w", cfg.DatabaseDriver, err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, noop, err
		}
		if migrate {
			if err := db.AutoMigrateAndIndexes(gdb.WithContext(ctx)); err != nil {
				_ = sqlDB.Close()
				return nil, noop, fmt.Errorf("migrate: %w", err)
			}
		}
		return gormstore.New(gdb), sqlDB.Close, nil

	case config.BackendSQL:
		sdb, err := db.OpenSQL(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		st, err := sqlstore.New(sdb, cfg.DatabaseDriver)
		if err != nil {
			_ = sdb.Close()
			return nil, noop, err
		}
		if migrate {
			if err := st.Migrate(ctx); err != nil {
				_ = st.Close()
				return nil, noop, fmt.Errorf("migrate: %w", err)
			}
		}
		return st, st.Close, nil

	default:
		return nil, noop, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
}
