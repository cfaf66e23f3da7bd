// Package relevance decides which candidate items are worth notifying about.
package relevance

import (
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/regwatch/internal/domain"
	"github.com/Adda-Baaj/regwatch/internal/ledger"
)

const untitled = "(untitled)"

// Category names a keyword list.
type Category string

const (
	CategoryCompetitors Category = "competitors"
	CategoryIndustries  Category = "industries"
	CategoryLegal       Category = "legal_keywords"
)

// Outcome classifies a filter decision.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeSeen        Outcome = "seen"
	OutcomeStale       Outcome = "stale"
	OutcomeKeywordMiss Outcome = "keyword_miss"
)

// Decision explains why an item was accepted or rejected. Missed is set only
// for OutcomeKeywordMiss and names the first category without a match.
type Decision struct {
	Outcome Outcome
	Missed  Category
}

// Accepted reports whether the item passed.
func (d Decision) Accepted() bool { return d.Outcome == OutcomeAccepted }

func (d Decision) String() string {
	if d.Outcome == OutcomeKeywordMiss {
		return fmt.Sprintf("%s(%s)", d.Outcome, d.Missed)
	}
	return string(d.Outcome)
}

// Filter applies the dedup, recency and keyword rules.
type Filter struct {
	keywords []categoryKeywords
	now      func() time.Time
}

type categoryKeywords struct {
	category Category
	terms    []string
}

// Option customises a Filter.
type Option func(*Filter)

// WithClock replaces the wall clock used for undated items and ledger marks.
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}

// New builds a Filter over the three keyword categories. Terms are matched
// case-insensitively as substrings; empty terms are ignored.
func New(kw domain.KeywordSets, opts ...Option) *Filter {
	f := &Filter{
		keywords: []categoryKeywords{
			{category: CategoryCompetitors, terms: lowerAll(kw.Competitors)},
			{category: CategoryIndustries, terms: lowerAll(kw.Industries)},
			{category: CategoryLegal, terms: lowerAll(kw.Legal)},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Accept is the boolean form of Evaluate.
func (f *Filter) Accept(item domain.CandidateItem, src domain.SourceDescriptor, since time.Time, led *ledger.Ledger) (domain.RelevantArticle, bool) {
	art, d := f.Evaluate(item, src, since, led)
	return art, d.Accepted()
}

// Evaluate runs the checks cheapest first: ledger presence, recency, then the
// keyword categories (every category must match at least one term). On
// acceptance the item is marked in led at the current time.
func (f *Filter) Evaluate(item domain.CandidateItem, src domain.SourceDescriptor, since time.Time, led *ledger.Ledger) (domain.RelevantArticle, Decision) {
	id := ledger.ItemID(item.URL)
	if led.Seen(id) {
		return domain.RelevantArticle{}, Decision{Outcome: OutcomeSeen}
	}

	now := f.now()
	effective, undated := now, true
	if item.PublishedAt != nil && !item.PublishedAt.IsZero() {
		effective, undated = *item.PublishedAt, false
	}
	if effective.Before(since) {
		return domain.RelevantArticle{}, Decision{Outcome: OutcomeStale}
	}

	text := strings.ToLower(item.Title + " " + item.Summary)
	for _, ck := range f.keywords {
		if !containsAny(text, ck.terms) {
			return domain.RelevantArticle{}, Decision{Outcome: OutcomeKeywordMiss, Missed: ck.category}
		}
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = untitled
	}
	led.Mark(id, now)

	return domain.RelevantArticle{
		Title:       title,
		URL:         item.URL,
		Summary:     item.Summary,
		PublishedAt: effective,
		Undated:     undated,
		Source:      src.DisplayName(item.URL),
	}, Decision{Outcome: OutcomeAccepted}
}

// containsAny reports whether lowered text contains any of the lowered terms.
func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
