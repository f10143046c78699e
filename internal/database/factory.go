package database

import (
	"fmt"
	"path/filepath"

	"salli-go/internal/config"
	"salli-go/internal/salli"
)

// NewDatabaseFromConfig opens the ledger described by the database config.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, hostID string, clock salli.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, hostID+".db"), clock)
	case "memory":
		return NewSQLiteDatabase(":memory:", clock)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
