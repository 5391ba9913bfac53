package store

import (
	"context"

	"go.uber.org/zap"
)

// DefaultSlotKey is the key the snapshot is stored under.
const DefaultSlotKey = "gestor-judicial-data"

// Slot is the local key-value slot holding the serialized snapshot.
type Slot interface {
	// Load returns the stored bytes; ok is false when nothing was saved yet.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save replaces the stored bytes.
	Save(ctx context.Context, data []byte) error
	// Clear removes the stored bytes.
	Clear(ctx context.Context) error
	// Describe names the backend for logs and status output.
	Describe() string
	Close() error
}

// NewSlot picks the snapshot backend. With an empty or unreachable Redis URL
// the snapshot lives in the SQLite store.
func NewSlot(ctx context.Context, redisURL, key string, st *Store, logger *zap.SugaredLogger) Slot {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if key == "" {
		key = DefaultSlotKey
	}

	if redisURL == "" {
		return st.Slot(key)
	}

	slot, err := NewRedisSlot(ctx, redisURL, key)
	if err == nil {
		return slot
	}
	logger.Warnw("redis slot unavailable, using sqlite", "error", err)
	return st.Slot(key)
}

// SQLiteSlot stores the snapshot in the kv table.
type SQLiteSlot struct {
	store *Store
	key   string
}

// Slot returns a slot bound to key on this store.
func (s *Store) Slot(key string) *SQLiteSlot {
	return &SQLiteSlot{store: s, key: key}
}

func (s *SQLiteSlot) Load(ctx context.Context) ([]byte, bool, error) {
	return s.store.Get(ctx, s.key)
}

func (s *SQLiteSlot) Save(ctx context.Context, data []byte) error {
	return s.store.Put(ctx, s.key, data)
}

func (s *SQLiteSlot) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}

func (s *SQLiteSlot) Describe() string {
	return "sqlite:" + s.store.Path() + "#" + s.key
}

// Close is a no-op; the store owns the connection.
func (s *SQLiteSlot) Close() error {
	return nil
}
