package providers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<!doctype html>
<html><head>
  <title>Ignored title</title>
  <meta property="og:title" content="Example Newsroom">
</head><body>
  <a href="/news/2026/regco-settles">RegCo settles with regulator</a>
  <a href="https://site.example.com/blog/fintech-rules">Fintech rules <em>explained</em></a>
  <a href="https://other.example.com/news/elsewhere">Cross-domain news</a>
  <a href="/about">About us</a>
  <a href="/news/no-text"></a>
  <a href="mailto:press@site.example.com">Press</a>
  <a href="stories/relative">Relative story</a>
</body></html>`

const brochurePage = `<!doctype html>
<html><head>
  <title>  Brochure
  Page </title>
  <meta name="description" content="We sell compliance tooling.">
</head><body><a href="/contact">Contact</a></body></html>`

func extractHTML(t *testing.T, pageURL, body string) []string {
	t.Helper()
	items, err := NewHTMLExtractor().Extract(context.Background(), pageURL, Classification{Kind: KindHTML, Body: []byte(body)})
	require.NoError(t, err)
	urls := make([]string, 0, len(items))
	for _, it := range items {
		urls = append(urls, it.URL)
	}
	return urls
}

func TestHTMLExtractor_SameHostArticleLinks(t *testing.T) {
	urls := extractHTML(t, "https://site.example.com/press/index.html", listingPage)
	assert.Equal(t, []string{
		"https://site.example.com/news/2026/regco-settles",
		"https://site.example.com/blog/fintech-rules",
		"https://site.example.com/press/stories/relative",
	}, urls)
}

func TestHTMLExtractor_AnchorTitles(t *testing.T) {
	items, err := NewHTMLExtractor().Extract(context.Background(), "https://site.example.com/",
		Classification{Kind: KindHTML, Body: []byte(listingPage)})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "Fintech rules explained", items[1].Title)
	assert.Empty(t, items[1].Summary)
	assert.Nil(t, items[1].PublishedAt)
}

func TestHTMLExtractor_FallbackToPageItself(t *testing.T) {
	items, err := NewHTMLExtractor().Extract(context.Background(), "https://brochure.example.com/",
		Classification{Kind: KindHTML, Body: []byte(brochurePage)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://brochure.example.com/", items[0].URL)
	assert.Equal(t, "Brochure Page", items[0].Title)
	assert.Equal(t, "We sell compliance tooling.", items[0].Summary)
}

func TestHTMLExtractor_FallbackPrefersOpenGraph(t *testing.T) {
	page := `<html><head><title>Plain</title>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description">
<meta name="description" content="plain description"></head><body></body></html>`
	items, err := NewHTMLExtractor().Extract(context.Background(), "https://og.example.com/",
		Classification{Kind: KindHTML, Body: []byte(page)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "OG Title", items[0].Title)
	assert.Equal(t, "OG description", items[0].Summary)
}

func TestHTMLExtractor_FallbackTitleDefaultsToURLAndIsCapped(t *testing.T) {
	items, err := NewHTMLExtractor().Extract(context.Background(), "https://bare.example.com/",
		Classification{Kind: KindHTML, Body: []byte(`<html><body>nothing</body></html>`)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://bare.example.com/", items[0].Title)

	long := strings.Repeat("x", 800)
	page := fmt.Sprintf(`<html><head><title>%s</title><meta name="description" content="%s"></head></html>`, long, long)
	items, err = NewHTMLExtractor().Extract(context.Background(), "https://long.example.com/",
		Classification{Kind: KindHTML, Body: []byte(page)})
	require.NoError(t, err)
	assert.Len(t, []rune(items[0].Title), maxTitleRunes)
	assert.Len(t, []rune(items[0].Summary), maxDescriptionRunes)
}

func TestHTMLExtractor_CapsAnchorCandidates(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 80; i++ {
		fmt.Fprintf(&b, `<a href="/news/%d">Story %d</a>`, i, i)
	}
	b.WriteString("</body></html>")

	urls := extractHTML(t, "https://cap.example.com/", b.String())
	assert.Len(t, urls, maxAnchorCandidates)
	assert.Equal(t, "https://cap.example.com/news/0", urls[0])
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", plainText("   "))
	assert.Equal(t, "plain text here", plainText(" plain\n text  here "))
	assert.Equal(t, "a b & c", plainText("<div>a</div><div>b &amp; c</div><script>var x;</script>"))
}
