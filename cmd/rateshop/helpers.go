package main

import (
	"context"
	"fmt"

	"github.com/freightwise/rateshop/internal/config"
	"github.com/freightwise/rateshop/internal/history"
	"github.com/freightwise/rateshop/internal/service"

	"github.com/spf13/viper"
)

// initHistory opens the history store with proper path expansion and runs
// migrations.
func initHistory(ctx context.Context) (service.HistoryStore, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/rateshop/history.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := history.NewSQLiteStore(dbPath, config.HistoryConfig())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
