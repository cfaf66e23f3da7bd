package publishers

import (
	"context"
	"fmt"
)

// Implicit publisher ids.
const (
	WebhookID = "slack-webhook"
	DryRunID  = "dry-run"
)

// Targets are the delivery settings of a run: an optional publishers file
// and an optional Slack webhook URL.
type Targets struct {
	File       string
	WebhookURL string
}

// Configs lists the publishers for t: file entries first, then the webhook.
// With neither, a stdout publisher is returned and dryRun is true.
func (t Targets) Configs() (cfgs []PublisherConfig, dryRun bool, err error) {
	if t.File != "" {
		if cfgs, err = LoadFile(t.File); err != nil {
			return nil, false, err
		}
	}
	if t.WebhookURL != "" {
		hook := PublisherConfig{ID: WebhookID, Type: TypeHTTP, HTTP: &HTTPConfig{URL: t.WebhookURL}}
		hook.normalize()
		if err := hook.validate(); err != nil {
			return nil, false, err
		}
		cfgs = append(cfgs, hook)
	}
	if len(cfgs) > 0 {
		return cfgs, false, nil
	}

	dry := PublisherConfig{ID: DryRunID, Type: TypeStdout}
	dry.normalize()
	return []PublisherConfig{dry}, true, nil
}

// Resolve builds the publishers for t, logging once when the run falls back
// to printing the payload.
func Resolve(ctx context.Context, t Targets, log Logger) ([]Publisher, error) {
	log = ensureLogger(log)

	cfgs, dryRun, err := t.Configs()
	if err != nil {
		return nil, fmt.Errorf("resolve publishers: %w", err)
	}
	if dryRun {
		log.WarnObj("no delivery endpoint configured, payload will be printed", "dry_run", nil)
	}
	return Build(ctx, cfgs, log)
}

// Build validates and constructs a publisher per config, closing any already
// built when one fails.
func Build(ctx context.Context, cfgs []PublisherConfig, log Logger) ([]Publisher, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	pubs := make([]Publisher, 0, len(cfgs))
	for _, cfg := range cfgs {
		cfg.normalize()
		err := cfg.validate()
		var pub Publisher
		if err == nil {
			pub, err = build(ctx, cfg, log)
		}
		if err != nil {
			_ = CloseAll(pubs)
			return nil, fmt.Errorf("build publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}

func build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	switch cfg.Type {
	case TypeHTTP:
		return newHTTPPublisher(cfg, log)
	case TypeQueue:
		return newQueuePublisher(ctx, cfg, log)
	case TypeStdout:
		return newStdoutPublisher(cfg, log), nil
	default:
		return nil, fmt.Errorf("type %q not supported", cfg.Type)
	}
}
