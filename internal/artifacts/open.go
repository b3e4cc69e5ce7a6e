package artifacts

import (
	"context"
	"fmt"
	"log/slog"

	"lobstat/internal/config"
)

// Open builds the artifact store selected by cfg. dir is the root of the
// file backend. When a Redis address is configured the store is wrapped in a
// read-through cache; an unreachable Redis is logged and skipped.
func Open(ctx context.Context, cfg config.StorageConfig, dir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var primary Store
	switch cfg.Backend {
	case "", "file":
		fs, err := NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		primary = fs
	case "s3":
		s3store, err := NewS3Store(ctx, S3Config{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			Prefix:         cfg.S3.Prefix,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			return nil, err
		}
		if err := s3store.Health(ctx); err != nil {
			return nil, err
		}
		primary = s3store
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.Redis.Addr == "" {
		return primary, nil
	}
	cache, err := NewRedisStore(ctx, RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err != nil {
		logger.WarnContext(ctx, "artifact cache unavailable, continuing without it",
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()))
		return primary, nil
	}
	return NewCached(primary, cache, logger), nil
}
