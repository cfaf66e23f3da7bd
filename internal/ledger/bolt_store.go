package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adda-Baaj/regwatch/internal/logger"
)

var seenBucket = []byte("seen")

const boltOpenTimeout = 5 * time.Second

// BoltStore keeps the ledger in a bbolt database, one key per identifier.
// The database is opened only for the duration of Load and Save.
type BoltStore struct {
	path string
	log  logger.Logger
}

// NewBoltStore returns a store backed by the bbolt file at path.
func NewBoltStore(path string, log logger.Logger) *BoltStore {
	return &BoltStore{path: path, log: logger.Ensure(log)}
}

// Load reads all entries. Missing, locked or corrupt databases yield an empty ledger.
func (s *BoltStore) Load(_ context.Context) *Ledger {
	if _, err := os.Stat(s.path); err != nil {
		return New()
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: boltOpenTimeout, ReadOnly: true})
	if err != nil {
		s.log.WarnObj("ledger db unreadable, starting empty", "ledger_load_failed", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return New()
	}
	defer db.Close()

	l := New()
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(seenBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			ts, perr := strconv.ParseFloat(string(v), 64)
			if perr != nil {
				return fmt.Errorf("entry %q: %w", k, perr)
			}
			l.entries[string(k)] = ts
			return nil
		})
	})
	if err != nil {
		s.log.WarnObj("ledger db corrupt, starting empty", "ledger_corrupt", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return New()
	}
	return l
}

// Save writes every entry in a single transaction.
func (s *BoltStore) Save(_ context.Context, l *Ledger) error {
	if l == nil {
		l = New()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return fmt.Errorf("open ledger db: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(seenBucket)
		if err != nil {
			return err
		}
		for id, ts := range l.entries {
			if err := b.Put([]byte(id), []byte(strconv.FormatFloat(ts, 'f', -1, 64))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write ledger db: %w", err)
	}
	return nil
}
