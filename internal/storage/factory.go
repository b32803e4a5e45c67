package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sparroh/disablefloatingtext/internal/config"
	"github.com/sparroh/disablefloatingtext/internal/database"
	gormstorage "github.com/sparroh/disablefloatingtext/internal/storage/gorm"
	"github.com/sparroh/disablefloatingtext/internal/storage/memory"
)

var (
	_ Backend        = (*memory.Backend)(nil)
	_ SessionBackend = (*gormstorage.Backend)(nil)
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StatsConfig, log zerolog.Logger, version string) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := database.OpenPostgres(cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:            db,
			Logger:        log,
			Version:       version,
			FlushInterval: cfg.FlushInterval,
			QueueLimit:    cfg.BufferSize,
		}), nil
	case "sqlite":
		db, err := database.OpenSqlite(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		deps := gormstorage.Dependencies{
			DB:            db,
			Logger:        log,
			Version:       version,
			FlushInterval: cfg.FlushInterval,
			QueueLimit:    cfg.BufferSize,
		}
		// a file DB is already on disk
		if cfg.SQLitePath == "" {
			deps.DumpPath = cfg.DumpPath
		}
		return gormstorage.New(deps), nil
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
