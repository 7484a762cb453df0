package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
)

const cacheKeyPrefix = "tmdb:movie:"

// cacheBackend is the subset of *redis.Client used by CachedClient.
type cacheBackend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedClient is a read-through redis cache in front of another Client. Cache
// failures are logged and never fail a lookup.
type CachedClient struct {
	next   Client
	cache  cacheBackend
	ttl    time.Duration
	logger *log.Logger
}

// NewCachedClient wraps next with a redis cache holding entries for ttl.
func NewCachedClient(next Client, rdb *redis.Client, ttl time.Duration, logger *log.Logger) *CachedClient {
	return newCachedClient(next, rdb, ttl, logger)
}

func newCachedClient(next Client, cache cacheBackend, ttl time.Duration, logger *log.Logger) *CachedClient {
	if logger == nil {
		logger = log.Default()
	}
	return &CachedClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

// MovieDetails serves id from redis when present, otherwise from the wrapped client.
func (c *CachedClient) MovieDetails(ctx context.Context, id int64) (domain.MovieCreate, error) {
	key := cacheKeyPrefix + strconv.FormatInt(id, 10)

	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var movie domain.MovieCreate
		if err := json.Unmarshal(raw, &movie); err == nil {
			return movie, nil
		}
		c.logger.Printf("tmdb: discarding corrupt cache entry %s", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Printf("tmdb: cache read %s: %v", key, err)
	}

	movie, err := c.next.MovieDetails(ctx, id)
	if err != nil {
		return domain.MovieCreate{}, err
	}

	payload, err := json.Marshal(movie)
	if err != nil {
		c.logger.Printf("tmdb: encode cache entry %s: %v", key, err)
		return movie, nil
	}
	if err := c.cache.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Printf("tmdb: cache write %s: %v", key, err)
	}
	return movie, nil
}
