package artifacts

import (
	"context"
	"fmt"
	"log/slog"

	"lobstat/internal/validation"
	"lobstat/pkg/contracts/domain"
)

// Store persists artifacts. Get reports found=false, with a nil error, for
// keys that were never written.
type Store interface {
	Put(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, key domain.ArtifactKey) (*Artifact, bool, error)
	Close() error
}

func checkKey(key domain.ArtifactKey) error {
	if err := validation.Struct(key); err != nil {
		return fmt.Errorf("artifact key %s: %w", key, err)
	}
	return nil
}

// Cached reads through a cache in front of a primary store. Cache errors are
// logged and never fail an operation.
type Cached struct {
	primary Store
	cache   Store
	logger  *slog.Logger
}

// NewCached combines primary and cache.
func NewCached(primary, cache Store, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{
		primary: primary,
		cache:   cache,
		logger:  logger.With(slog.String("component", "artifact_cache")),
	}
}

// Put writes to the primary store, then to the cache.
func (c *Cached) Put(ctx context.Context, a *Artifact) error {
	if err := c.primary.Put(ctx, a); err != nil {
		return err
	}
	if err := c.cache.Put(ctx, a); err != nil {
		c.logger.WarnContext(ctx, "cache write failed",
			slog.String("key", a.Meta.Key.Path()),
			slog.String("error", err.Error()))
	}
	return nil
}

// Get serves from the cache when possible and fills it on a miss.
func (c *Cached) Get(ctx context.Context, key domain.ArtifactKey) (*Artifact, bool, error) {
	a, found, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache read failed",
			slog.String("key", key.Path()),
			slog.String("error", err.Error()))
	}
	if err == nil && found {
		return a, true, nil
	}

	a, found, err = c.primary.Get(ctx, key)
	if err != nil || !found {
		return nil, found, err
	}
	if err := c.cache.Put(ctx, a); err != nil {
		c.logger.WarnContext(ctx, "cache fill failed",
			slog.String("key", key.Path()),
			slog.String("error", err.Error()))
	}
	return a, true, nil
}

// Close closes both stores.
func (c *Cached) Close() error {
	perr := c.primary.Close()
	cerr := c.cache.Close()
	if perr != nil {
		return perr
	}
	return cerr
}
