package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// InitRedis returns nil when Redis is not reachable; the service then runs without it.
func InitRedis(ctx context.Context, address string, log logrus.FieldLogger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.WithError(err).Warn("Redis not available. Running without Redis.")
		_ = client.Close()
		return nil
	}

	log.Info("Redis connected successfully.")
	return client
}

// Cache wraps a Redis client. A Cache with a nil client never hits and every
// lock is granted, which matches a single-instance deployment.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the JSON value stored under key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

// GetVersion returns the current version counter, 0 when unset.
func (c *Cache) GetVersion(ctx context.Context, key string) int64 {
	if !c.enabled() {
		return 0
	}
	v, err := c.client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return v
}

// IncrementVersion invalidates every cache key derived from the version.
func (c *Cache) IncrementVersion(ctx context.Context, key string) {
	if !c.enabled() {
		return
	}
	c.client.Incr(ctx, key)
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a held distributed lock.
type Lock struct {
	cache *Cache
	key   string
	token string
}

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock is held by another instance")

// AcquireLock takes key for ttl using SET NX.
func (c *Cache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	lock := &Lock{cache: c, key: key, token: uuid.NewString()}
	if !c.enabled() {
		return lock, nil
	}
	ok, err := c.client.SetNX(ctx, key, lock.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return lock, nil
}

// Release deletes the lock only if it is still owned by this holder.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || !l.cache.enabled() {
		return nil
	}
	return releaseScript.Run(ctx, l.cache.client, []string{l.key}, l.token).Err()
}
