package dao

import (
	"context"
	"encoding/json"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/redis/go-redis/v9"

	"github.com/Laisky/word-association/library/assoc"
	rdb "github.com/Laisky/word-association/library/db/redis"
)

var _ assoc.Store = new(CachedStore)

// cacheMissMarker is cached for cues that have no row
const cacheMissMarker = "-"

// RedisKV is the subset of the redis client used by the cache and sessions.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// CachedStore caches cue lookups of an underlying store in redis.
//
// Random letter lookups are never cached. Any redis failure is logged
// and the lookup falls through to the underlying store.
type CachedStore struct {
	store  assoc.Store
	rdb    RedisKV
	ttl    time.Duration
	logger logSDK.Logger
}

// NewCachedStore wraps store with a redis lookup cache
func NewCachedStore(store assoc.Store, cli RedisKV, ttl time.Duration, logger logSDK.Logger) (*CachedStore, error) {
	switch {
	case store == nil:
		return nil, errors.New("store cannot be nil")
	case cli == nil:
		return nil, errors.New("redis cannot be nil")
	case ttl <= 0:
		return nil, errors.Errorf("cache ttl must be positive, got %s", ttl)
	case logger == nil:
		return nil, errors.New("logger cannot be nil")
	}

	return &CachedStore{
		store:  store,
		rdb:    cli,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// LookupByCue implements assoc.Store.
func (c *CachedStore) LookupByCue(ctx context.Context, cue string) (*assoc.Entry, error) {
	key := rdb.KeyPrefixLookup + cue

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil && cached == cacheMissMarker:
		return nil, nil
	case err == nil:
		e := new(assoc.Entry)
		if err = json.Unmarshal([]byte(cached), e); err == nil {
			return e, nil
		}
		c.logger.Warn("drop corrupted cache entry", zap.String("key", key), zap.Error(err))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("read lookup cache", zap.String("key", key), zap.Error(err))
	}

	e, err := c.store.LookupByCue(ctx, cue)
	if err != nil {
		return nil, errors.Wrap(err, "lookup by cue")
	}

	value := cacheMissMarker
	if e != nil {
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, errors.Wrap(err, "marshal entry")
		}
		value = string(payload)
	}

	if err = c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("write lookup cache", zap.String("key", key), zap.Error(err))
	}

	return e, nil
}

// LookupRandomByLetter implements assoc.Store.
func (c *CachedStore) LookupRandomByLetter(ctx context.Context, letter string) (*assoc.Entry, error) {
	return c.store.LookupRandomByLetter(ctx, letter)
}

// Invalidate drops the cached lookups of cues, used after an import.
func (c *CachedStore) Invalidate(ctx context.Context, cues ...string) error {
	if len(cues) == 0 {
		return nil
	}

	keys := make([]string, 0, len(cues))
	for _, cue := range cues {
		keys = append(keys, rdb.KeyPrefixLookup+assoc.Normalize(cue))
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "delete cached lookups")
	}

	return nil
}
