package crawler

import (
	"context"
	"time"

	"github.com/Adda-Baaj/regwatch/internal/domain"
	"github.com/Adda-Baaj/regwatch/internal/ledger"
	"github.com/Adda-Baaj/regwatch/internal/relevance"
	"github.com/Adda-Baaj/regwatch/pkg/providers"
)

// SourceFetcher extracts candidate items from every URL of a source.
type SourceFetcher interface {
	Fetch(ctx context.Context, src domain.SourceDescriptor) providers.SourceResult
}

// ItemFilter decides whether a candidate is relevant and records acceptance in the ledger.
type ItemFilter interface {
	Evaluate(item domain.CandidateItem, src domain.SourceDescriptor, since time.Time, led *ledger.Ledger) (domain.RelevantArticle, relevance.Decision)
}

// LedgerStore persists the ledger at the end of a run.
type LedgerStore interface {
	Save(ctx context.Context, l *ledger.Ledger) error
}
