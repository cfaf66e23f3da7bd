package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemIDIsStableSHA1(t *testing.T) {
	id := ItemID("https://example.com/news/1")
	assert.Len(t, id, 40)
	assert.Equal(t, id, ItemID("https://example.com/news/1"))
	assert.NotEqual(t, id, ItemID("https://example.com/news/2"))
}

func TestLedgerMarkAndSeen(t *testing.T) {
	l := New()
	id := ItemID("https://example.com/a")
	assert.False(t, l.Seen(id))

	at := time.Date(2026, 10, 1, 12, 0, 0, 500_000_000, time.UTC)
	l.Mark(id, at)

	assert.True(t, l.Seen(id))
	assert.Equal(t, 1, l.Len())
	got, ok := l.RecordedAt(id)
	require.True(t, ok)
	assert.WithinDuration(t, at, got, time.Millisecond)
}

func TestJSONStoreMissingFileIsEmpty(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "seen.json"), nil)
	l := s.Load(context.Background())
	assert.Equal(t, 0, l.Len())
}

func TestJSONStoreCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := NewJSONStore(path, nil).Load(context.Background())
	assert.Equal(t, 0, l.Len())
}

func TestJSONStoreRoundTripCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "seen.json")
	s := NewJSONStore(path, nil)

	l := New()
	l.Mark(ItemID("https://example.com/a"), time.Unix(1_700_000_000, 0))
	l.Mark(ItemID("https://example.com/b"), time.Unix(1_700_000_100, 0))
	require.NoError(t, s.Save(context.Background(), l))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]float64
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.InDelta(t, 1_700_000_000, onDisk[ItemID("https://example.com/a")], 0.001)

	reloaded := s.Load(context.Background())
	assert.Equal(t, l.IDs(), reloaded.IDs())
}

func TestBoltStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	s := NewBoltStore(path, nil)

	assert.Equal(t, 0, s.Load(context.Background()).Len())

	l := New()
	l.Mark(ItemID("https://example.com/a"), time.Unix(1_700_000_000, 250_000_000))
	require.NoError(t, s.Save(context.Background(), l))

	reloaded := s.Load(context.Background())
	require.Equal(t, 1, reloaded.Len())
	got, ok := reloaded.RecordedAt(ItemID("https://example.com/a"))
	require.True(t, ok)
	assert.WithinDuration(t, time.Unix(1_700_000_000, 250_000_000), got, time.Millisecond)

	// a second save only adds
	l.Mark(ItemID("https://example.com/b"), time.Unix(1_700_000_500, 0))
	require.NoError(t, s.Save(context.Background(), l))
	assert.Equal(t, 2, s.Load(context.Background()).Len())
}

func TestBoltStoreCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	require.NoError(t, os.WriteFile(path, []byte("definitely not bolt"), 0o600))

	assert.Equal(t, 0, NewBoltStore(path, nil).Load(context.Background()).Len())
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("", "x.json", nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, s)

	s, err = NewStore("BOLT", "x.db", nil)
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)

	_, err = NewStore("redis", "x", nil)
	assert.Error(t, err)
}

func TestJSONStoreSaveKeepsReadableMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	store := NewJSONStore(path, nil)

	l := New()
	l.Mark(ItemID("https://example.com/a"), time.Unix(1_700_000_000, 0))
	require.NoError(t, store.Save(context.Background(), l))
	require.NoError(t, store.Save(context.Background(), l))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, ledgerFileMode, info.Mode().Perm())
}
