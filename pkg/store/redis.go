package store

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/c9s/exnonce/pkg/metrics"
)

var redisLogger = log.WithFields(log.Fields{
	"store": "redis",
})

// incrMaxScript advances a counter to max(stored+1, candidate) and refreshes
// its TTL in one server-side step. Counter values are millisecond timestamps,
// well within Lua's exact integer range.
var incrMaxScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1])) or 0
local next = current + 1
local candidate = tonumber(ARGV[1])
if candidate > next then
	next = candidate
end
redis.call('SET', KEYS[1], next, 'PX', ARGV[2])
return next
`)

type RedisConfig struct {
	Host      string `yaml:"host" json:"host" env:"EXNONCE_REDIS_HOST"`
	Port      string `yaml:"port" json:"port" env:"EXNONCE_REDIS_PORT"`
	Password  string `yaml:"password,omitempty" json:"password,omitempty" env:"EXNONCE_REDIS_PASSWORD"`
	DB        int    `yaml:"db" json:"db" env:"EXNONCE_REDIS_DB"`
	Namespace string `yaml:"namespace" json:"namespace" env:"EXNONCE_REDIS_NAMESPACE"`
}

func NewRedisClient(config *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})
}

// RedisStore implements Store on a shared redis server. All instances that
// route calls for the same credentials must point at the same server.
type RedisStore struct {
	redis     *redis.Client
	namespace string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{
		redis:     client,
		namespace: namespace,
	}
}

func (s *RedisStore) formatKey(key string) string {
	if s.namespace != "" {
		return s.namespace + ":" + key
	}

	return key
}

func (s *RedisStore) IncrMax(ctx context.Context, key string, candidate int64, ttl time.Duration) (int64, error) {
	next, err := incrMaxScript.Run(ctx, s.redis, []string{s.formatKey(key)}, candidate, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, s.unavailable("incrmax", err)
	}

	redisLogger.Debugf("[redis] incrmax key %q, candidate = %d, next = %d", key, candidate, next)
	return next, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.redis.Get(ctx, s.formatKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrNotFound
		}

		return 0, s.unavailable("get", err)
	}

	v, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "corrupted counter value %q at key %q", data, key)
	}

	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if _, err := s.redis.Set(ctx, s.formatKey(key), value, ttl).Result(); err != nil {
		return s.unavailable("set", err)
	}

	return nil
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	if _, err := s.redis.Del(ctx, s.formatKey(key)).Result(); err != nil {
		return s.unavailable("del", err)
	}

	return nil
}

// unavailable maps any transport or server error onto ErrStoreUnavailable so
// that callers can test with errors.Is and take the fallback path.
func (s *RedisStore) unavailable(op string, err error) error {
	metrics.StoreErrorMetrics.With(prometheus.Labels{"op": op}).Inc()
	redisLogger.WithError(err).Warnf("[redis] %s failed", op)
	return errors.Wrapf(ErrStoreUnavailable, "redis %s: %v", op, err)
}
