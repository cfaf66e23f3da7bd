package providers

import (
	"bytes"

	"github.com/mmcdole/gofeed"
)

// Classify decides whether body is a syndication feed. Anything that does not
// parse to a feed with at least one entry is treated as an HTML page; the URL
// suffix and content type are not consulted.
func Classify(body []byte) Classification {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err == nil && parsed != nil && len(parsed.Items) > 0 {
		return Classification{Kind: KindFeed, Feed: parsed, Body: body}
	}
	return Classification{Kind: KindHTML, Body: body}
}
