// driver/redis.go
//
// Thin shim over github.com/redis/go-redis/v9 used by the Redis state
// store. Every command runs inside an OpenTelemetry span.
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := state.NewRedisStore(driver.NewRedisConn(rdb), state.WithTTL(time.Hour))
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Executor runs one raw Redis command.
type Executor interface {
	Do(ctx context.Context, args ...interface{}) (any, error)
}

// RedisConn implements Executor on top of *redis.Client.
type RedisConn struct {
	client *redis.Client
}

// NewRedisConn wraps an existing go-redis client.
func NewRedisConn(c *redis.Client) *RedisConn { return &RedisConn{client: c} }

// Do runs the command. A missing key surfaces as redis.Nil, which is not
// recorded on the span as an error.
func (rc *RedisConn) Do(ctx context.Context, args ...interface{}) (any, error) {
	ctx, span := otel.Tracer("tablelimit.driver").Start(ctx, "redis.do")
	defer span.End()

	start := time.Now()
	res, err := rc.client.Do(ctx, args...).Result()
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("redis.cmd", commandName(args)),
		attribute.Float64("redis.duration_ms", float64(elapsed.Milliseconds())),
	)
	if err != nil && err != redis.Nil {
		span.RecordError(err)
	}
	return res, err
}

// Ping checks the connection.
func (rc *RedisConn) Ping(ctx context.Context) error { return rc.client.Ping(ctx).Err() }

// Close conveniently closes the underlying *redis.Client.
func (rc *RedisConn) Close() error { return rc.client.Close() }

// ----------------------------------------------------------------------------
// internal helpers
// ----------------------------------------------------------------------------

// commandName keeps the verb and key only; values are table state and stay
// out of traces.
func commandName(args []interface{}) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 1 {
			break
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(toString(a))
	}
	return sb.String()
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
