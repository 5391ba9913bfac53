package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('kv','audit_entries')").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestKeyValue(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("one")))
	require.NoError(t, store.Put(ctx, "k", []byte("two")))

	v, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(v))

	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteSlotPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "gestor.db")
	ctx := context.Background()

	s, err := NewStore(dbPath)
	require.NoError(t, err)
	slot := NewSlot(ctx, "", "", s, nil)
	assert.Contains(t, slot.Describe(), DefaultSlotKey)
	require.NoError(t, slot.Save(ctx, []byte(`{"processos":[]}`)))
	require.NoError(t, s.Close())

	s, err = NewStore(dbPath)
	require.NoError(t, err)
	defer s.Close()
	data, ok, err := s.Slot(DefaultSlotKey).Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"processos":[]}`, string(data))
}

func TestNewSlotFallsBackWithoutRedis(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	slot := NewSlot(ctx, "redis://127.0.0.1:1/0", "k", s, nil)
	_, isSQLite := slot.(*SQLiteSlot)
	assert.True(t, isSQLite)

	slot = NewSlot(ctx, "not a url", "k", s, nil)
	_, isSQLite = slot.(*SQLiteSlot)
	assert.True(t, isSQLite)
}

func TestAuditEntriesFlow(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{
		CaseID: "case_a", Action: "case_created", Actor: "tester",
		Details: map[string]interface{}{"numero": "1/24"}, Timestamp: base,
	}))
	require.NoError(t, s.AddAuditEntry(ctx, AuditEntry{
		CaseID: "case_a", Action: "status_changed", Actor: "tester",
		Details: map[string]interface{}{"status": "findo"}, Metadata: map[string]string{"revision": "2"},
		Timestamp: base.Add(time.Second),
	}))
	require.NoError(t, s.LogCaseAction(ctx, CaseAction{Action: "reference_added", Actor: "tester", Summary: "crimes: Furto", Revision: 3, Slot: "sqlite", At: base.Add(2 * time.Second)}))

	entries, err := s.GetAuditEntries(ctx, "case_a", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "status_changed", entries[0].Action)
	assert.Equal(t, "2", entries[0].Metadata["revision"])
	assert.Equal(t, "1/24", entries[1].Details["numero"])
	assert.Nil(t, entries[1].Metadata)

	all, err := s.GetAuditEntries(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "reference_added", all[0].Action)
	assert.Equal(t, "crimes: Furto", all[0].Details["summary"])
	assert.Equal(t, map[string]string{"revision": "3", "slot": "sqlite"}, all[0].Metadata)

	limited, err := s.GetAuditEntries(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats["audit_entries"])
}
