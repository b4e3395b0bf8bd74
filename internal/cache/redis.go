package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Options configures a Redis-backed cache.
type Options struct {
	URL         string
	Prefix      string
	OpTimeout   time.Duration
	MaxRetries  int
	DialTimeout time.Duration
	// ConnectTimeout bounds the initial ping loop in Connect.
	ConnectTimeout time.Duration
}

// RedisCache is a TokenCache backed by Redis. Each call runs under its own
// deadline so a slow or absent server only costs OpTimeout per call.
type RedisCache struct {
	client    *redis.Client
	prefix    string
	opTimeout time.Duration
	log       *logrus.Entry
	rec       metrics.Recorder
}

func New(client *redis.Client, prefix string, opTimeout time.Duration, log *logrus.Logger, rec metrics.Recorder) *RedisCache {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if opTimeout <= 0 {
		opTimeout = 500 * time.Millisecond
	}
	return &RedisCache{
		client:    client,
		prefix:    prefix,
		opTimeout: opTimeout,
		log:       logger.Component(log, "cache"),
		rec:       rec,
	}
}

// Connect builds a client from opts.URL and pings it with capped exponential
// backoff. When the server stays unreachable the cache is still returned,
// together with an error wrapping domain.ErrUnavailable; its operations then
// degrade to misses until the server comes back.
func Connect(ctx context.Context, opts Options, log *logrus.Logger, rec metrics.Recorder) (*RedisCache, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisOpts.MaxRetries = opts.MaxRetries
	redisOpts.MinRetryBackoff = 8 * time.Millisecond
	redisOpts.MaxRetryBackoff = 128 * time.Millisecond
	if opts.DialTimeout > 0 {
		redisOpts.DialTimeout = opts.DialTimeout
	} else {
		redisOpts.DialTimeout = time.Second
	}

	c := New(redis.NewClient(redisOpts), opts.Prefix, opts.OpTimeout, log, rec)

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = connectTimeout

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if err := c.Ping(ctx); err != nil {
			c.log.WithError(err).WithField("attempt", attempt).Warn("redis ping failed")
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return c, fmt.Errorf("%w: redis unreachable: %v", domain.ErrUnavailable, err)
	}

	c.log.WithField("addr", redisOpts.Addr).Info("connected to redis")
	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.rec.RecordCacheMiss()
			return "", false
		}
		c.fail("get", err)
		return "", false
	}

	c.rec.RecordCacheHit()
	return value, true
}

func (c *RedisCache) SetWithExpiry(ctx context.Context, key string, ttl time.Duration, value string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		c.fail("set", err)
		return false
	}
	return true
}

func (c *RedisCache) Delete(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.fail("delete", err)
		return false
	}
	return true
}

func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) fail(op string, err error) {
	c.rec.RecordCacheError(op)
	c.log.WithError(fmt.Errorf("%w: %v", domain.ErrUnavailable, err)).
		WithField("op", op).
		Warn("token cache degraded")
}
