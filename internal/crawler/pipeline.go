// Package crawler runs the fetch, filter and dedup pass over all sources.
package crawler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Adda-Baaj/regwatch/internal/domain"
	"github.com/Adda-Baaj/regwatch/internal/ledger"
	"github.com/Adda-Baaj/regwatch/internal/logger"
	"github.com/Adda-Baaj/regwatch/internal/relevance"
	"github.com/Adda-Baaj/regwatch/pkg/providers"
)

// Report summarises one pass.
type Report struct {
	// Articles are sorted most recent first.
	Articles   []domain.RelevantArticle
	Sources    []providers.SourceResult
	Candidates int
	Outcomes   map[relevance.Outcome]int
}

// FailedURLs counts URLs that could not be fetched or parsed.
func (r Report) FailedURLs() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Failed()
	}
	return n
}

// Pipeline composes fetcher, filter and ledger store. Sources are processed
// sequentially, one URL at a time.
type Pipeline struct {
	fetcher SourceFetcher
	filter  ItemFilter
	store   LedgerStore
	log     logger.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(fetcher SourceFetcher, filter ItemFilter, store LedgerStore, log logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		filter:  filter,
		store:   store,
		log:     logger.Ensure(log),
	}
}

// Run fetches every source in order, filters its items against led and
// returns the accepted articles. The ledger is saved exactly once after the
// pass, whether or not anything was accepted; the returned error is only ever
// a save failure, and the report is valid either way.
func (p *Pipeline) Run(ctx context.Context, sources []domain.SourceDescriptor, since time.Time, led *ledger.Ledger) (Report, error) {
	if led == nil {
		led = ledger.New()
	}
	report := Report{Outcomes: make(map[relevance.Outcome]int)}

	for _, src := range sources {
		res := p.fetcher.Fetch(ctx, src)
		report.Sources = append(report.Sources, res)
		report.Candidates += len(res.Items)

		accepted := 0
		for _, item := range res.Items {
			art, d := p.filter.Evaluate(item, src, since, led)
			report.Outcomes[d.Outcome]++
			if !d.Accepted() {
				p.log.DebugObj("candidate rejected", "candidate_rejected", map[string]any{
					"source": src.Name,
					"url":    item.URL,
					"reason": d.String(),
				})
				continue
			}
			accepted++
			report.Articles = append(report.Articles, art)
		}

		p.log.InfoObj("source processed", "source_processed", map[string]any{
			"source":      src.Name,
			"urls":        len(src.URLs),
			"failed_urls": res.Failed(),
			"candidates":  len(res.Items),
			"accepted":    accepted,
		})
	}

	SortByRecency(report.Articles)

	if err := p.store.Save(ctx, led); err != nil {
		return report, fmt.Errorf("save ledger: %w", err)
	}

	p.log.InfoObj("crawl pass complete", "crawl_complete", map[string]any{
		"sources":     len(sources),
		"candidates":  report.Candidates,
		"accepted":    len(report.Articles),
		"failed_urls": report.FailedURLs(),
		"ledger_size": led.Len(),
	})
	return report, nil
}

// SortByRecency orders articles most recent first, keeping source order for ties.
func SortByRecency(articles []domain.RelevantArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
