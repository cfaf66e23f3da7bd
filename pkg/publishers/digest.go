package publishers

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Adda-Baaj/regwatch/internal/domain"
)

const (
	maxSummaryRunes = 300
	untitled        = "(untitled)"
)

// Block is a Slack Block Kit layout block.
type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

// TextObject is a Block Kit text composition object.
type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

var (
	mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	// linkEscaper percent-encodes the characters that end a <url|text> link.
	linkEscaper = strings.NewReplacer("|", "%7C", "<", "%3C", ">", "%3E")
)

// BuildDigestBlocks renders the digest message. An empty article list still
// yields a single "no new articles" section.
func BuildDigestBlocks(title string, articles []domain.RelevantArticle, now time.Time) []Block {
	if len(articles) == 0 {
		return []Block{
			{Type: "section", Text: mrkdwn(fmt.Sprintf("*%s*\n_No new relevant articles found this period._", title))},
		}
	}

	sorted := make([]domain.RelevantArticle, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	blocks := []Block{
		{Type: "header", Text: &TextObject{Type: "plain_text", Text: title, Emoji: true}},
		{Type: "context", Elements: []TextObject{*mrkdwn("Compiled " + now.Format("2006-01-02 15:04"))}},
		{Type: "divider"},
	}
	for _, art := range sorted {
		blocks = append(blocks,
			Block{Type: "section", Text: mrkdwn(articleText(art, now.Location()))},
			Block{Type: "divider"},
		)
	}
	return blocks
}

func articleText(art domain.RelevantArticle, loc *time.Location) string {
	when := "recent"
	if !art.Undated && !art.PublishedAt.IsZero() {
		when = art.PublishedAt.In(loc).Format("2006-01-02")
	}

	title := strings.TrimSpace(art.Title)
	if title == "" {
		title = untitled
	}

	return fmt.Sprintf("*<%s|%s>*\n_%s · %s_\n%s",
		linkEscaper.Replace(art.URL),
		mrkdwnEscaper.Replace(title),
		mrkdwnEscaper.Replace(art.Source),
		when,
		mrkdwnEscaper.Replace(clipSummary(art.Summary)),
	)
}

// clipSummary caps the summary at maxSummaryRunes, marking the cut with an ellipsis.
func clipSummary(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxSummaryRunes {
		return s
	}
	return string(runes[:maxSummaryRunes]) + "…"
}

func mrkdwn(text string) *TextObject {
	return &TextObject{Type: "mrkdwn", Text: text}
}
