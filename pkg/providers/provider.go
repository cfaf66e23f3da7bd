package providers

import (
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/regwatch/internal/domain"
)

// Kind is the outcome of probing a URL's body.
type Kind string

const (
	KindFeed Kind = "feed"
	KindHTML Kind = "html"
)

// Classification is the tagged result of Classify. Feed is set only for KindFeed.
type Classification struct {
	Kind Kind
	Feed *gofeed.Feed
	Body []byte
}

// Stage names where a per-URL fetch failed.
type Stage string

const (
	StageNetwork    Stage = "network"
	StageHTTPStatus Stage = "http_status"
	StageParse      Stage = "parse"
)

// FetchError is a classified per-URL failure. It is never fatal to a run.
type FetchError struct {
	Stage      Stage
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: HTTP %d for %s: %v", e.Stage, e.StatusCode, e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %v for %s", e.Stage, e.Cause, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// URLResult is the outcome of fetching one URL: either items (possibly none)
// or a failure.
type URLResult struct {
	URL   string
	Kind  Kind
	Items []domain.CandidateItem
	Err   error
}

// OK reports whether the URL was fetched and extracted.
func (r URLResult) OK() bool { return r.Err == nil }

// FetchStage returns the failure stage, or "" when the fetch succeeded.
func (r URLResult) FetchStage() Stage {
	var fe *FetchError
	if errors.As(r.Err, &fe) {
		return fe.Stage
	}
	return ""
}

// SourceResult aggregates a source's URL results. Items are deduplicated by
// URL across the whole source, first occurrence wins.
type SourceResult struct {
	Source domain.SourceDescriptor
	Items  []domain.CandidateItem
	URLs   []URLResult
}

// Failed returns how many URLs of the source failed.
func (r SourceResult) Failed() int {
	n := 0
	for _, u := range r.URLs {
		if !u.OK() {
			n++
		}
	}
	return n
}
