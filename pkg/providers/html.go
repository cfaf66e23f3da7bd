package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/regwatch/internal/domain"
)

const (
	maxAnchorCandidates = 50
	maxTitleRunes       = 200
	maxDescriptionRunes = 500
)

// articlePathSegments mark same-site links that look like articles.
var articlePathSegments = []string{"/news", "/article", "/stories", "/202", "/blog"}

// htmlExtractor derives candidates from a plain HTML page: same-host article
// links when there are any, otherwise the page itself.
type htmlExtractor struct{}

// NewHTMLExtractor builds the Extractor for KindHTML classifications.
func NewHTMLExtractor() Extractor { return htmlExtractor{} }

func (htmlExtractor) Kind() Kind { return KindHTML }

func (htmlExtractor) Extract(_ context.Context, pageURL string, c Classification) ([]domain.CandidateItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(c.Body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	items := anchorCandidates(doc, base)
	if len(items) > 0 {
		return items, nil
	}

	meta := parseMeta(doc)
	return []domain.CandidateItem{{
		URL:     pageURL,
		Title:   truncateRunes(firstNonEmpty(meta.Title, pageURL), maxTitleRunes),
		Summary: truncateRunes(meta.Description, maxDescriptionRunes),
	}}, nil
}

// anchorCandidates scans anchors for same-host article-like links.
func anchorCandidates(doc *goquery.Document, base *url.URL) []domain.CandidateItem {
	var items []domain.CandidateItem
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := textOf(a)
		if text == "" {
			return true
		}
		href, _ := a.Attr("href")
		link, ok := sameHostLink(href, base)
		if !ok || !looksLikeArticle(link.Path) {
			return true
		}
		items = append(items, domain.CandidateItem{
			URL:   link.String(),
			Title: truncateRunes(text, maxTitleRunes),
		})
		return len(items) < maxAnchorCandidates
	})
	return items
}

// sameHostLink resolves href against base and rejects links to other hosts.
func sameHostLink(href string, base *url.URL) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	link := base.ResolveReference(ref)
	if link.Scheme != "http" && link.Scheme != "https" {
		return nil, false
	}
	if !strings.EqualFold(link.Host, base.Host) {
		return nil, false
	}
	return link, true
}

func looksLikeArticle(path string) bool {
	for _, seg := range articlePathSegments {
		if strings.Contains(path, seg) {
			return true
		}
	}
	return false
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Title       string
	Description string
}

// parseMeta prefers Open Graph tags, then <title> and the description meta tag.
func parseMeta(doc *goquery.Document) pageMeta {
	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return normalizeSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			normalizeSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
	}
}
