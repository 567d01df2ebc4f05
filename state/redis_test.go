package state

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojoshi/tablelimit/driver"
)

// fakeRedis answers GET / SET / DEL from a map and records each command.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	cmds [][]interface{}
}

func (f *fakeRedis) Do(_ context.Context, args ...interface{}) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, args)
	key := args[1].(string)
	switch args[0] {
	case "GET":
		v, ok := f.data[key]
		if !ok {
			return nil, redis.Nil
		}
		return v, nil
	case "SET":
		f.data[key] = string(args[2].([]byte))
		return "OK", nil
	case "DEL":
		delete(f.data, key)
		return int64(1), nil
	}
	return nil, nil
}

func TestRedisStoreWithFake(t *testing.T) {
	fake := &fakeRedis{data: map[string]string{}}
	s := NewRedisStore(fake, WithPrefix("t:"), WithTTL(time.Minute))
	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "pres", []byte("x")))
	last := fake.cmds[len(fake.cmds)-1]
	assert.Equal(t, []interface{}{"SET", "t:pres", []byte("x"), "PX", int64(60000)}, last)
	assert.Contains(t, fake.data, "t:pres")
}

func TestRedisStoreLive(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	conn := driver.NewRedisConn(redis.NewClient(&redis.Options{Addr: addr}))
	defer conn.Close()
	require.NoError(t, conn.Ping(context.Background()))

	exerciseStore(t, NewRedisStore(conn, WithPrefix("tablelimit-test:"+NewSessionID()+":")))
}
