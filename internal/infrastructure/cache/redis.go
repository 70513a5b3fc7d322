package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/docuvault/docrisk/internal/domain/entity"
	"github.com/docuvault/docrisk/internal/infrastructure/monitoring/logging"
)

// keyPrefix namespaces docrisk entries in a shared redis instance.
const keyPrefix = "docrisk:query:"

// Redis is the redis-backed Cache implementation.  Redis failures degrade to
// cache misses with a warning; the cache must never take queries down.
type Redis struct {
	client *goredis.Client
	logger logging.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis wraps an established redis client as a Cache.
func NewRedis(client *goredis.Client, logger logging.Logger) *Redis {
	return &Redis{client: client, logger: logger.Named("cache")}
}

func (r *Redis) Get(ctx context.Context, key string) (*entity.Page, bool) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.logger.Warn("cache get failed", logging.String("key", key), logging.Err(err))
		}
		return nil, false
	}
	var page entity.Page
	if err := json.Unmarshal(data, &page); err != nil {
		r.logger.Warn("cache entry corrupt, dropping", logging.String("key", key), logging.Err(err))
		r.Invalidate(ctx, key)
		return nil, false
	}
	return &page, true
}

func (r *Redis) Put(ctx context.Context, key string, page *entity.Page, ttl time.Duration) {
	if page == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		r.logger.Warn("cache put marshal failed", logging.String("key", key), logging.Err(err))
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		r.logger.Warn("cache put failed", logging.String("key", key), logging.Err(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		r.logger.Warn("cache invalidate failed", logging.String("key", key), logging.Err(err))
	}
}
