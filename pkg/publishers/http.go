package publishers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Adda-Baaj/regwatch/pkg/httpclient"
)

// httpPublisher posts the event to a webhook endpoint.
type httpPublisher struct {
	id     string
	format string
	cfg    HTTPConfig
	client httpclient.Client
	log    Logger
}

func newHTTPPublisher(cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:     cfg.ID,
		format: cfg.Format,
		cfg:    *cfg.HTTP,
		client: httpclient.NewRestyClient(timeout),
		log:    ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return TypeHTTP }

// Publish sends the event; any status outside 2xx is an error.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	resp, err := p.client.Do(ctx, p.cfg.Method, p.cfg.URL, p.cfg.Headers, evt.Body(p.format))
	if err != nil {
		return fmt.Errorf("http publish: %w", err)
	}

	if code := resp.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook error %d: %s", code, httpclient.Snippet(resp.Body()))
	}

	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": p.id,
		"format":       p.format,
		"status":       resp.StatusCode(),
	})
	return nil
}
