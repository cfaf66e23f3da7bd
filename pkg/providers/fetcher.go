package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/regwatch/internal/domain"
	"github.com/Adda-Baaj/regwatch/internal/logger"
	"github.com/Adda-Baaj/regwatch/pkg/httpclient"
)

const (
	// DefaultRequestTimeout bounds every upstream request.
	DefaultRequestTimeout = 20 * time.Second
	maxHTMLBytes          = 4 << 20 // 4 MiB
)

// Extractor turns a classified body into candidate items.
type Extractor interface {
	Kind() Kind
	Extract(ctx context.Context, pageURL string, c Classification) ([]domain.CandidateItem, error)
}

// ExtractorRegistry resolves the extractor for a classification kind.
type ExtractorRegistry interface {
	ExtractorFor(kind Kind) (Extractor, error)
}

type extractorRegistry struct {
	extractors map[Kind]Extractor
	mu         sync.RWMutex
}

// NewExtractorRegistry builds a registry for the provided extractors.
func NewExtractorRegistry(extractors ...Extractor) ExtractorRegistry {
	reg := &extractorRegistry{
		extractors: make(map[Kind]Extractor, len(extractors)),
	}
	for _, e := range extractors {
		if e == nil {
			continue
		}
		reg.extractors[e.Kind()] = e
	}
	return reg
}

// ExtractorFor selects the extractor registered for kind.
func (r *extractorRegistry) ExtractorFor(kind Kind) (Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.extractors[kind]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("no extractor registered for kind %q", kind)
}

// DefaultExtractorRegistry wires up the feed and HTML extractors.
func DefaultExtractorRegistry() ExtractorRegistry {
	return NewExtractorRegistry(NewFeedExtractor(), NewHTMLExtractor())
}

// DefaultHTTPClient returns the client used when none is supplied.
func DefaultHTTPClient() httpclient.Client { return httpclient.NewRestyClient(DefaultRequestTimeout) }

// SourceFetcher downloads every URL of a source, one at a time, and extracts
// candidate items from it.
type SourceFetcher struct {
	client   httpclient.Client
	registry ExtractorRegistry
	headers  map[string]string
	log      logger.Logger
}

// Option customises a SourceFetcher.
type Option func(*SourceFetcher)

// WithHeaders adds request headers sent with every fetch.
func WithHeaders(headers map[string]string) Option {
	return func(f *SourceFetcher) {
		for k, v := range headers {
			if k = strings.TrimSpace(k); k != "" {
				f.headers[k] = v
			}
		}
	}
}

// WithRegistry replaces the extractor registry.
func WithRegistry(reg ExtractorRegistry) Option {
	return func(f *SourceFetcher) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// NewSourceFetcher creates a SourceFetcher. Nil client or logger fall back to defaults.
func NewSourceFetcher(client httpclient.Client, log logger.Logger, opts ...Option) *SourceFetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	f := &SourceFetcher{
		client:   client,
		registry: DefaultExtractorRegistry(),
		headers:  map[string]string{},
		log:      logger.Ensure(log),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch collects candidates from every URL of src in order. Failed URLs are
// logged and contribute no items.
func (f *SourceFetcher) Fetch(ctx context.Context, src domain.SourceDescriptor) SourceResult {
	res := SourceResult{Source: src}
	seen := make(map[string]struct{})

	for _, u := range src.URLs {
		ur := f.FetchURL(ctx, u)
		res.URLs = append(res.URLs, ur)

		if !ur.OK() {
			f.log.WarnObj("source url fetch failed", "source_fetch_failed", map[string]any{
				"source": src.Name,
				"url":    u,
				"stage":  string(ur.FetchStage()),
				"error":  ur.Err.Error(),
			})
			continue
		}

		for _, item := range ur.Items {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			res.Items = append(res.Items, item)
		}

		f.log.DebugObj("source url fetched", "source_fetched", map[string]any{
			"source": src.Name,
			"url":    u,
			"kind":   string(ur.Kind),
			"items":  len(ur.Items),
		})
	}
	return res
}

// FetchURL downloads u once, classifies the body and dispatches to the
// matching extractor.
func (f *SourceFetcher) FetchURL(ctx context.Context, u string) URLResult {
	res := URLResult{URL: u}

	resp, err := f.client.Get(ctx, u, f.headers)
	if err != nil {
		res.Err = &FetchError{Stage: StageNetwork, URL: u, Cause: err}
		return res
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		res.Err = &FetchError{
			Stage:      StageHTTPStatus,
			URL:        u,
			StatusCode: code,
			Cause:      errors.New(httpclient.Snippet(body)),
		}
		return res
	}

	// Classification sees the whole body; only the HTML walk is bounded.
	c := Classify(body)
	res.Kind = c.Kind
	if c.Kind == KindHTML && len(c.Body) > maxHTMLBytes {
		f.log.InfoObj("html body truncated", "truncation", map[string]any{
			"url":      u,
			"received": len(c.Body),
			"kept":     maxHTMLBytes,
		})
		c.Body = c.Body[:maxHTMLBytes]
	}

	extractor, err := f.registry.ExtractorFor(c.Kind)
	if err != nil {
		res.Err = &FetchError{Stage: StageParse, URL: u, Cause: err}
		return res
	}

	items, err := extractor.Extract(ctx, u, c)
	if err != nil {
		res.Err = &FetchError{Stage: StageParse, URL: u, Cause: err}
		return res
	}
	res.Items = items
	return res
}
