// Package ledger records which items have already been surfaced so later runs
// do not notify about them again.
package ledger

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/hex"
	"sort"
	"time"
)

// ItemID derives the stable ledger identifier for an item URL.
func ItemID(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}

// Ledger maps item identifiers to the unix time (seconds, fractional) they
// were recorded. Entries are never removed. Not safe for concurrent use.
type Ledger struct {
	entries map[string]float64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]float64)}
}

// FromMap builds a ledger from persisted entries.
func FromMap(entries map[string]float64) *Ledger {
	l := New()
	for id, ts := range entries {
		l.entries[id] = ts
	}
	return l
}

// Seen reports whether id was recorded before.
func (l *Ledger) Seen(id string) bool {
	_, ok := l.entries[id]
	return ok
}

// Mark records id as seen at t.
func (l *Ledger) Mark(id string, t time.Time) {
	l.entries[id] = unixSeconds(t)
}

// RecordedAt returns when id was recorded.
func (l *Ledger) RecordedAt(id string) (time.Time, bool) {
	ts, ok := l.entries[id]
	if !ok {
		return time.Time{}, false
	}
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec), true
}

// Len returns the number of recorded identifiers.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// IDs returns the recorded identifiers in sorted order.
func (l *Ledger) IDs() []string {
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Map returns a copy of the entries.
func (l *Ledger) Map() map[string]float64 {
	out := make(map[string]float64, len(l.entries))
	for id, ts := range l.entries {
		out[id] = ts
	}
	return out
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
