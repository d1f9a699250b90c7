package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
)

const RedisType = "redis"

const defaultRedisURL = "redis://localhost:6379"

var _ core.Directory = (*RedisDirectory)(nil)

type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL.
	URL string `mapstructure:"url"`

	// Password overrides the password given in URL, if set.
	Password string `mapstructure:"password"`
}

// RedisDirectory stores directory entries as plain Redis string keys.
type RedisDirectory struct {
	client redis.UniversalClient
}

func NewRedisDirectory(cfg RedisConfig) (*RedisDirectory, error) {
	url := cfg.URL
	if url == "" {
		url = defaultRedisURL
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	return NewRedisDirectoryWithClient(redis.NewClient(opts)), nil
}

// NewRedisDirectoryWithClient wraps an already configured client (cluster, sentinel, ...).
func NewRedisDirectoryWithClient(client redis.UniversalClient) *RedisDirectory {
	return &RedisDirectory{client: client}
}

func (r *RedisDirectory) Name() string {
	return RedisType
}

func (r *RedisDirectory) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrNotFound
		}
		return "", unavailable(RedisType, err)
	}
	return value, nil
}

func (r *RedisDirectory) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return r.writeError(err)
	}
	return nil
}

func (r *RedisDirectory) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, key).Result()
	if err != nil {
		return false, r.writeError(err)
	}
	return n > 0, nil
}

func (r *RedisDirectory) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return unavailable(RedisType, err)
	}
	return nil
}

func (r *RedisDirectory) Close() error {
	return r.client.Close()
}

// writeError keeps server-side rejections (READONLY, OOM, ...) apart from
// connectivity problems.
func (r *RedisDirectory) writeError(err error) error {
	var replyErr redis.Error
	if errors.As(err, &replyErr) && !isConnectivityError(err) {
		return fmt.Errorf("%s: %w", RedisType, err)
	}
	return unavailable(RedisType, err)
}
