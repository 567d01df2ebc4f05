package config

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/manojoshi/tablelimit/driver"
	"github.com/manojoshi/tablelimit/state"
)

// OpenStore opens the configured state backend. closeFn releases it.
func (c *Config) OpenStore(ctx context.Context) (s state.Store, closeFn func() error, err error) {
	switch c.State.Backend {
	case BackendRedis:
		conn := driver.NewRedisConn(redis.NewClient(&redis.Options{Addr: c.State.RedisAddr}))
		if err := conn.Ping(ctx); err != nil {
			_ = conn.Close()
			return nil, nil, errors.Wrapf(err, "ping redis at %s", c.State.RedisAddr)
		}
		return state.NewRedisStore(conn,
			state.WithPrefix(c.State.RedisPrefix),
			state.WithTTL(c.State.TTL),
		), conn.Close, nil

	case BackendSQLite:
		s, err := state.OpenSQLStore(c.State.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	s, err = state.NewMemoryStore(c.State.Size)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}
