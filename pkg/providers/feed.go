package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/regwatch/internal/domain"
)

const maxFeedEntries = 50

// feedExtractor turns parsed feed entries into candidates.
type feedExtractor struct{}

// NewFeedExtractor builds the Extractor for KindFeed classifications.
func NewFeedExtractor() Extractor { return feedExtractor{} }

func (feedExtractor) Kind() Kind { return KindFeed }

// Extract reads up to 50 entries. Entries without a usable link are skipped.
func (feedExtractor) Extract(_ context.Context, _ string, c Classification) ([]domain.CandidateItem, error) {
	if c.Feed == nil {
		return nil, errors.New("feed classification without parsed feed")
	}

	entries := c.Feed.Items
	if len(entries) > maxFeedEntries {
		entries = entries[:maxFeedEntries]
	}

	items := make([]domain.CandidateItem, 0, len(entries))
	for _, entry := range entries {
		link := entryLink(entry)
		if link == "" {
			continue
		}
		items = append(items, domain.CandidateItem{
			URL:         link,
			Title:       normalizeSpace(entry.Title),
			Summary:     plainText(firstNonEmpty(entry.Description, entry.Content)),
			PublishedAt: entryPublished(entry),
		})
	}
	return items, nil
}

// entryLink prefers the explicit link, falling back to a GUID that looks like a URL.
func entryLink(entry *gofeed.Item) string {
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	if guid := strings.TrimSpace(entry.GUID); strings.HasPrefix(guid, "http") {
		return guid
	}
	return ""
}

// entryPublished returns the structured publish date, then the updated date.
// Nothing is fabricated when both are missing.
func entryPublished(entry *gofeed.Item) *time.Time {
	for _, t := range []*time.Time{entry.PublishedParsed, entry.UpdatedParsed} {
		if t != nil && !t.IsZero() {
			v := *t
			return &v
		}
	}
	return nil
}
