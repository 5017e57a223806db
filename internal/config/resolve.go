package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lshguard/simhashindex/internal/bucketkey"
	"github.com/lshguard/simhashindex/internal/lshindex"
	"github.com/lshguard/simhashindex/internal/storage"
	"github.com/lshguard/simhashindex/internal/storage/memstore"
	"github.com/lshguard/simhashindex/internal/storage/redisstore"
)

// ResolveKeyFunc resolves the configured key-derivation scheme name to its
// bucketkey.KeyFunc implementation.
func (c IndexConfig) ResolveKeyFunc() (bucketkey.KeyFunc, error) {
	switch c.KeyFunc {
	case "", "bit-arithmetic":
		return bucketkey.BitArithmeticSplit, nil
	case "even":
		return bucketkey.EvenSplit, nil
	case "two-level":
		return bucketkey.TwoLevelSplit, nil
	default:
		return nil, fmt.Errorf("config: unknown key_func %q", c.KeyFunc)
	}
}

// LSHConfig builds an lshindex.Config from the index section, writing
// progress/warning lines to logger (nil disables logging).
func (c IndexConfig) LSHConfig(logger *log.Logger) (lshindex.Config, error) {
	kf, err := c.ResolveKeyFunc()
	if err != nil {
		return lshindex.Config{}, err
	}
	cfg := lshindex.DefaultConfig()
	if c.F > 0 {
		cfg.F = c.F
	}
	if c.K > 0 {
		cfg.K = c.K
	}
	cfg.KeyFunc = kf
	cfg.Prefix = c.Prefix
	cfg.Logger = logger
	cfg.ReadThreshold = c.ReadThreshold
	cfg.ProbeThreshold = c.ProbeThreshold
	return cfg, nil
}

// BuildStorage constructs the bucket Storage and, when with-id mode is on,
// the SingleValueStore fingerprint->id map, from the backend section.
// idMap is nil when cfg.Index.WithID is false.
func (c *Config) BuildStorage(ctx context.Context) (bucketStore storage.Storage, idMap storage.SingleValueStore, closeFn func() error, err error) {
	switch c.Backend.Type {
	case "", "memory":
		bucketStore = memstore.New()
		if c.Index.WithID {
			idMap = memstore.NewIDMap()
		}
		return bucketStore, idMap, func() error { return nil }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: c.Backend.Redis.Addr,
			DB:   c.Backend.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("config: connect to redis at %s: %w", c.Backend.Redis.Addr, err)
		}

		var storeOpts []redisstore.Option
		if c.Backend.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisstore.WithExpire(c.Backend.Redis.TTL))
		}
		bucketStore = redisstore.New(client, storeOpts...)
		if c.Index.WithID {
			idMap = redisstore.NewIDMap(client, c.Backend.Redis.KeyPrefix+"idmap:")
		}
		return bucketStore, idMap, client.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("config: unknown backend type %q", c.Backend.Type)
	}
}

// Logger builds the *log.Logger an Index should use, writing to stderr
// with the package's conventional prefix.
func Logger() *log.Logger {
	return log.New(os.Stderr, "simhashindex: ", log.LstdFlags)
}
