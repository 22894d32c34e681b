package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"circadian/internal/config"
)

// Open returns the repository selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Repository, error) {
	switch cfg.StorageBackend {
	case "file":
		s, err := NewFileStore(cfg.StateFile, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StorageBackend)
	}
}
