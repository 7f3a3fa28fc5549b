// Package redis wraps the redis client used for caching, sessions and queues.
package redis

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	gredis "github.com/Laisky/go-redis/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	cli *redis.Client
	db  *gredis.Utils
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	rdb := redis.NewClient(opt)
	rutils := gredis.NewRedisUtils(rdb)

	return &DB{
		cli: rdb,
		db:  rutils,
	}
}

// Client returns the raw client
func (db *DB) Client() *redis.Client {
	return db.cli
}

// Ping checks the connection
func (db *DB) Ping(ctx context.Context) error {
	if err := db.cli.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}

	return nil
}

// Close closes the client
func (db *DB) Close() error {
	return db.cli.Close()
}
