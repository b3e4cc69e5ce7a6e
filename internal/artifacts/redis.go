package artifacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lobstat/pkg/contracts/domain"
)

// RedisConfig configures a Redis artifact cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps artifacts in Redis hashes.
//
// Key schema:
//
//	lobstat:artifact:{path} - hash with fields "table" (CSV) and "meta" (JSON)
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis store: ping %s: %w", cfg.Addr, err)
	}
	return &RedisStore{rdb: rdb, ttl: cfg.TTL}, nil
}

func redisKey(key domain.ArtifactKey) string {
	return "lobstat:artifact:" + key.Path()
}

// Put implements Store
func (s *RedisStore) Put(ctx context.Context, a *Artifact) error {
	if err := checkKey(a.Meta.Key); err != nil {
		return err
	}
	table, meta, err := encode(a)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.Meta.Key, err)
	}

	key := redisKey(a.Meta.Key)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, "table", table, "meta", meta)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis store: set %s: %w", key, err)
	}
	return nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, key domain.ArtifactKey) (*Artifact, bool, error) {
	rk := redisKey(key)
	vals, err := s.rdb.HMGet(ctx, rk, "table", "meta").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis store: get %s: %w", rk, err)
	}
	table, tok := vals[0].(string)
	meta, mok := vals[1].(string)
	if !tok || !mok {
		return nil, false, nil
	}

	a, err := decode([]byte(table), []byte(meta))
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", rk, err)
	}
	return a, true, nil
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
