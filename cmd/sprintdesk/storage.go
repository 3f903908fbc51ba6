package main

import (
	"context"
	"fmt"

	"sprintdesk/internal/config"
	"sprintdesk/internal/store"
)

// storeOptions maps storage configuration onto store options.
func storeOptions(cfg *config.Config) (store.Options, error) {
	dialect, err := store.ParseDialect(cfg.Storage.Driver)
	if err != nil {
		return store.Options{}, err
	}

	switch dialect {
	case store.DialectPostgres:
		return store.Options{
			Dialect:  dialect,
			DSN:      cfg.Storage.Postgres.DSN(),
			MaxConns: cfg.Storage.Postgres.MaxConns,
		}, nil
	default:
		if cfg.Storage.DBPath == "" {
			return store.Options{}, fmt.Errorf("db path is required")
		}
		return store.Options{Dialect: dialect, Path: cfg.Storage.DBPath}, nil
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	opts, err := storeOptions(cfg)
	if err != nil {
		return nil, err
	}
	return store.OpenWithOptions(ctx, opts)
}
