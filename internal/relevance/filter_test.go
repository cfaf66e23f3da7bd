package relevance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/regwatch/internal/domain"
	"github.com/Adda-Baaj/regwatch/internal/ledger"
)

var (
	fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	since    = fixedNow.Add(-8 * 24 * time.Hour)
	keywords = domain.KeywordSets{
		Competitors: []string{"RegCo"},
		Industries:  []string{"Fintech"},
		Legal:       []string{"compliance", "Act"},
	}
	wire = domain.SourceDescriptor{Name: "Regulatory Wire"}
)

func newFilter() *Filter {
	return New(keywords, WithClock(func() time.Time { return fixedNow }))
}

func ptr(t time.Time) *time.Time { return &t }

func TestEvaluate_AcceptsMatchingItemAndMarksLedger(t *testing.T) {
	led := ledger.New()
	item := domain.CandidateItem{
		URL:         "https://wire.example.com/news/regco-inquiry",
		Title:       "RegCo faces new Fintech compliance inquiry under Banking Act",
		PublishedAt: ptr(fixedNow.Add(-24 * time.Hour)),
	}

	art, d := newFilter().Evaluate(item, wire, since, led)
	require.True(t, d.Accepted(), d.String())
	assert.Equal(t, "Regulatory Wire", art.Source)
	assert.Equal(t, item.URL, art.URL)
	assert.True(t, art.PublishedAt.Equal(*item.PublishedAt))
	assert.False(t, art.Undated)

	recorded, ok := led.RecordedAt(ledger.ItemID(item.URL))
	require.True(t, ok)
	assert.WithinDuration(t, fixedNow, recorded, time.Millisecond)
}

func TestEvaluate_SeenItemRejectedFirst(t *testing.T) {
	led := ledger.New()
	f := newFilter()
	first := domain.CandidateItem{URL: "https://x.example.com/a", Title: "RegCo Fintech compliance"}
	second := domain.CandidateItem{URL: "https://x.example.com/a", Title: "Completely different title"}

	_, d := f.Evaluate(first, wire, since, led)
	require.True(t, d.Accepted())

	_, d = f.Evaluate(second, wire, since, led)
	assert.Equal(t, OutcomeSeen, d.Outcome)
	_, ok := f.Accept(first, wire, since, led)
	assert.False(t, ok)
}

func TestEvaluate_StaleItemRejected(t *testing.T) {
	item := domain.CandidateItem{
		URL:         "https://x.example.com/old",
		Title:       "RegCo Fintech compliance",
		PublishedAt: ptr(since.Add(-time.Second)),
	}
	led := ledger.New()
	_, d := newFilter().Evaluate(item, wire, since, led)
	assert.Equal(t, OutcomeStale, d.Outcome)
	assert.Equal(t, 0, led.Len())
}

func TestEvaluate_BoundaryTimestampAccepted(t *testing.T) {
	item := domain.CandidateItem{
		URL:         "https://x.example.com/edge",
		Title:       "RegCo Fintech compliance",
		PublishedAt: ptr(since),
	}
	_, d := newFilter().Evaluate(item, wire, since, ledger.New())
	assert.True(t, d.Accepted())
}

func TestEvaluate_UndatedItemUsesClock(t *testing.T) {
	item := domain.CandidateItem{URL: "https://x.example.com/undated", Summary: "regco fintech COMPLIANCE"}
	art, d := newFilter().Evaluate(item, domain.SourceDescriptor{}, since, ledger.New())
	require.True(t, d.Accepted())
	assert.True(t, art.Undated)
	assert.True(t, art.PublishedAt.Equal(fixedNow))
	assert.Equal(t, "(untitled)", art.Title)
	assert.Equal(t, "x.example.com", art.Source)
}

func TestEvaluate_AllCategoriesRequired(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		missed Category
	}{
		{"no competitor", "Fintech compliance news", CategoryCompetitors},
		{"no industry", "RegCo compliance news", CategoryIndustries},
		{"no legal term", "RegCo Fintech earnings", CategoryLegal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			led := ledger.New()
			item := domain.CandidateItem{URL: "https://x.example.com/" + tc.name, Title: tc.text}
			_, d := newFilter().Evaluate(item, wire, since, led)
			assert.Equal(t, OutcomeKeywordMiss, d.Outcome)
			assert.Equal(t, tc.missed, d.Missed)
			assert.Equal(t, 0, led.Len())
		})
	}
}

func TestEvaluate_SummaryContributesToMatch(t *testing.T) {
	item := domain.CandidateItem{
		URL:     "https://x.example.com/split",
		Title:   "RegCo update",
		Summary: "New fintech ACT guidance",
	}
	_, d := newFilter().Evaluate(item, wire, since, ledger.New())
	assert.True(t, d.Accepted())
}

func TestEvaluate_EmptyCategoryMatchesNothing(t *testing.T) {
	f := New(domain.KeywordSets{Competitors: []string{"RegCo"}, Industries: []string{" "}, Legal: []string{"Act"}},
		WithClock(func() time.Time { return fixedNow }))
	_, d := f.Evaluate(domain.CandidateItem{URL: "https://x.example.com/e", Title: "RegCo Act"}, wire, since, ledger.New())
	assert.Equal(t, OutcomeKeywordMiss, d.Outcome)
	assert.Equal(t, CategoryIndustries, d.Missed)
	assert.Equal(t, "keyword_miss(industries)", d.String())
}
