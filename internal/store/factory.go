package store

import (
	"fmt"

	"salli-go/internal/config"
	"salli-go/internal/salli"
)

// NewStoreFromConfig creates a ContentStore based on the store config type.
func NewStoreFromConfig(cfg config.StoreConfig) (salli.ContentStore, error) {
	maxSize, err := cfg.MaxObjectBytes()
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "memory":
		return NewMemoryStore(maxSize), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 store requires s3_bucket to be set")
		}
		return NewS3StoreFromConfig(cfg, maxSize)
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot, maxSize)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
