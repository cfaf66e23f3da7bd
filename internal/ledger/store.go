package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/regwatch/internal/logger"
)

// Supported ledger backends.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// Store loads and persists a Ledger. Load never fails on missing or corrupt
// state; it returns an empty ledger instead.
type Store interface {
	Load(ctx context.Context) *Ledger
	Save(ctx context.Context, l *Ledger) error
}

// NewStore selects a Store implementation by backend name.
func NewStore(backend, path string, log logger.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewJSONStore(path, log), nil
	case BackendBolt:
		return NewBoltStore(path, log), nil
	default:
		return nil, fmt.Errorf("ledger backend %q not supported", backend)
	}
}
