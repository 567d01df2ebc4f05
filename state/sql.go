package state

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS limit_state (
	key        TEXT PRIMARY KEY,
	blob       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLStore keeps descriptors in a SQLite table.
type SQLStore struct {
	db *sql.DB
}

// OpenSQLStore opens (or creates) the SQLite database at path and applies
// the schema. ":memory:" gives a private in-memory database.
func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open state database")
	}
	// one writer at a time; this also keeps ":memory:" a single database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore uses an already open database. Call Migrate before use.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Migrate creates the state table when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply state schema")
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM limit_state WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read state %s", key)
	}
	return blob, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO limit_state (key, blob, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		key, blob, time.Now().UnixMilli())
	if err != nil {
		return errors.Wrapf(err, "write state %s", key)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM limit_state WHERE key = ?`, key); err != nil {
		return errors.Wrapf(err, "delete state %s", key)
	}
	return nil
}

// Purge drops entries last written before cutoff and reports how many.
func (s *SQLStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM limit_state WHERE updated_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, errors.Wrap(err, "purge state")
	}
	n, _ := res.RowsAffected()
	stateLog.WithField("removed", n).Debug("purged state")
	return n, nil
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
