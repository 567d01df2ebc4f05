package state

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/manojoshi/tablelimit/driver"
)

// RedisStore keeps descriptors in Redis strings under a key prefix,
// optionally expiring them.
type RedisStore struct {
	exec   driver.Executor
	prefix string
	ttl    time.Duration
}

// RedisOpt configures a RedisStore.
type RedisOpt func(*RedisStore)

// WithPrefix sets the key prefix; the default is "tablelimit:".
func WithPrefix(p string) RedisOpt { return func(s *RedisStore) { s.prefix = p } }

// WithTTL expires entries ttl after their last write. Zero keeps them.
func WithTTL(ttl time.Duration) RedisOpt { return func(s *RedisStore) { s.ttl = ttl } }

func NewRedisStore(exec driver.Executor, opts ...RedisOpt) *RedisStore {
	s := &RedisStore{exec: exec, prefix: "tablelimit:"}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.exec.Do(ctx, "GET", s.prefix+key)
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}
	switch v := res.(type) {
	case string:
		return []byte(v), true, nil
	case []byte:
		return v, true, nil
	case nil:
		return nil, false, nil
	}
	return nil, false, errors.Errorf("redis get %s: unexpected reply %T", key, res)
}

func (s *RedisStore) Put(ctx context.Context, key string, blob []byte) error {
	args := []interface{}{"SET", s.prefix + key, blob}
	if s.ttl > 0 {
		args = append(args, "PX", s.ttl.Milliseconds())
	}
	if _, err := s.exec.Do(ctx, args...); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if _, err := s.exec.Do(ctx, "DEL", s.prefix+key); err != nil {
		return errors.Wrapf(err, "redis del %s", key)
	}
	return nil
}
