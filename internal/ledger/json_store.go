package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Adda-Baaj/regwatch/internal/logger"
)

const ledgerFileMode os.FileMode = 0o644

// JSONStore keeps the ledger as a single JSON object of id -> timestamp.
type JSONStore struct {
	path string
	log  logger.Logger
}

// NewJSONStore returns a store backed by the file at path.
func NewJSONStore(path string, log logger.Logger) *JSONStore {
	return &JSONStore{path: path, log: logger.Ensure(log)}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

// Load reads the ledger file. A missing or malformed file yields an empty ledger.
func (s *JSONStore) Load(_ context.Context) *Ledger {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WarnObj("ledger file unreadable, starting empty", "ledger_load_failed", map[string]any{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return New()
	}

	var entries map[string]float64
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.WarnObj("ledger file corrupt, starting empty", "ledger_corrupt", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return New()
	}

	s.log.DebugObj("ledger loaded", "ledger_loaded", map[string]any{
		"path":    s.path,
		"entries": len(entries),
	})
	return FromMap(entries)
}

// Save rewrites the whole file through a temp file and rename.
func (s *JSONStore) Save(_ context.Context, l *Ledger) error {
	if l == nil {
		l = New()
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	payload, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".seen-*.json")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	// CreateTemp uses 0600; keep the ledger readable like any data file.
	if err := tmp.Chmod(ledgerFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}

	s.log.DebugObj("ledger saved", "ledger_saved", map[string]any{
		"path":    s.path,
		"entries": l.Len(),
	})
	return nil
}
