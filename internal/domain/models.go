package domain

import (
	"net/url"
	"strings"
	"time"
)

// Domain contains core models shared by the fetch, filter and delivery stages.

// SourceDescriptor is a configured group of URLs monitored together.
type SourceDescriptor struct {
	Name string
	URLs []string
}

// CandidateItem is a normalized, unfiltered entry extracted from a source URL.
// PublishedAt is nil when the upstream did not carry a usable date.
type CandidateItem struct {
	URL         string
	Title       string
	Summary     string
	PublishedAt *time.Time
}

// RelevantArticle is a candidate that passed filtering.
type RelevantArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
	// Undated marks articles whose PublishedAt was taken from the evaluation
	// clock. PublishedAt still holds that effective time, which is what the
	// stale check and the recency sort use; digests print "recent" instead.
	Undated bool   `json:"undated,omitempty"`
	Source  string `json:"source"`
}

// KeywordSets holds the three independently matched keyword categories.
type KeywordSets struct {
	Competitors []string
	Industries  []string
	Legal       []string
}

// DisplayName returns the configured source name, or the host of itemURL
// without a leading "www." when the source is unnamed.
func (s SourceDescriptor) DisplayName(itemURL string) string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return HostOf(itemURL)
}

// HostOf returns the host part of raw with any "www." prefix removed.
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
