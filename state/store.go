// Package state persists query descriptors between requests. The engine
// treats a stored descriptor as an opaque blob keyed by table id; scoping
// keys to a user session is the caller's job (see Scoped).
package state

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Store is a last-write-wins key/value store.
type Store interface {
	// Get returns the blob under key; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

var stateLog = log.WithField("component", "state")

// Scoped prefixes every key with session, so one backing store can serve
// many users.
func Scoped(s Store, session string) Store {
	return &scoped{inner: s, prefix: session + ":"}
}

type scoped struct {
	inner  Store
	prefix string
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Put(ctx context.Context, key string, blob []byte) error {
	return s.inner.Put(ctx, s.prefix+key, blob)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// NewSessionID returns a fresh random session id.
func NewSessionID() string { return uuid.NewString() }

// ValidSessionID reports whether s is a session id NewSessionID could have
// produced.
func ValidSessionID(s string) bool {
	id, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil && id.Version() == 4
}
