// Package app wires settings and the monitoring document to one full pass:
// load the ledger, crawl, persist, then notify.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Adda-Baaj/regwatch/internal/config"
	"github.com/Adda-Baaj/regwatch/internal/crawler"
	"github.com/Adda-Baaj/regwatch/internal/ledger"
	"github.com/Adda-Baaj/regwatch/internal/logger"
	"github.com/Adda-Baaj/regwatch/internal/relevance"
	"github.com/Adda-Baaj/regwatch/pkg/httpclient"
	"github.com/Adda-Baaj/regwatch/pkg/providers"
	"github.com/Adda-Baaj/regwatch/pkg/publishers"
)

const defaultTitle = "Weekly Regulatory Monitor"

// Deps are the collaborators of a run.
type Deps struct {
	Settings   config.Settings
	Config     *config.Config
	Store      ledger.Store
	Fetcher    crawler.SourceFetcher
	Publishers []publishers.Publisher
	Log        logger.Logger
	Now        func() time.Time
}

// New assembles production dependencies from settings and the loaded document.
func New(ctx context.Context, settings config.Settings, cfg *config.Config, log logger.Logger) (Deps, error) {
	log = logger.Ensure(log)

	store, err := ledger.NewStore(settings.LedgerBackend, settings.LedgerPath, log)
	if err != nil {
		return Deps{}, err
	}

	client := httpclient.NewRestyClientWithAgent(settings.RequestTimeout, settings.UserAgent)
	pubs, err := publishers.Resolve(ctx, publishers.Targets{
		File:       settings.PublishersFile,
		WebhookURL: settings.WebhookURL,
	}, log)
	if err != nil {
		return Deps{}, err
	}

	return Deps{
		Settings:   settings,
		Config:     cfg,
		Store:      store,
		Fetcher:    providers.NewSourceFetcher(client, log),
		Publishers: pubs,
		Log:        log,
		Now:        time.Now,
	}, nil
}

// Run performs one full pass. The ledger is persisted before delivery; a
// save failure does not suppress the notification, and both failures are
// returned together.
func Run(ctx context.Context, d Deps) error {
	if d.Config == nil {
		return errors.New("run: config is nil")
	}
	if d.Store == nil || d.Fetcher == nil {
		return errors.New("run: ledger store and fetcher are required")
	}
	log := logger.Ensure(d.Log)
	now := d.Now
	if now == nil {
		now = time.Now
	}
	loc := d.Settings.Location
	if loc == nil {
		loc = time.UTC
	}

	started := now().In(loc)
	since := d.Settings.Since(started)

	if empty := d.Config.EmptyCategories(); len(empty) > 0 {
		log.WarnObj("keyword categories are empty, no article can match", "keywords_empty", map[string]any{
			"categories": empty,
		})
	}

	led := d.Store.Load(ctx)
	log.InfoObj("run started", "run_started", map[string]any{
		"sources":     len(d.Config.Sources),
		"since":       since.Format(time.RFC3339),
		"ledger_size": led.Len(),
	})

	filter := relevance.New(d.Config.Keywords(), relevance.WithClock(now))
	pipeline := crawler.NewPipeline(d.Fetcher, filter, d.Store, log)

	report, saveErr := pipeline.Run(ctx, d.Config.Descriptors(), since, led)
	if saveErr != nil {
		log.ErrorObj("ledger not persisted", "ledger_save_failed", map[string]any{
			"error": saveErr.Error(),
		})
	}

	pubs := d.Publishers
	if len(pubs) == 0 {
		pubs = []publishers.Publisher{publishers.NewWriterPublisher(publishers.DryRunID, os.Stdout, log)}
	}

	title := d.Settings.ReportTitle
	if title == "" {
		title = defaultTitle
	}
	evt := publishers.NewDigestEvent(title, report.Articles, now().In(loc))
	deliverErr := publishers.PublishAll(ctx, pubs, evt, log)
	if err := publishers.CloseAll(pubs); err != nil {
		log.WarnObj("publisher close failed", "publisher_close_failed", map[string]any{"error": err.Error()})
	}

	if deliverErr != nil {
		deliverErr = fmt.Errorf("deliver notification: %w", deliverErr)
	}
	if err := errors.Join(saveErr, deliverErr); err != nil {
		return err
	}

	log.InfoObj("run complete", "run_complete", map[string]any{
		"articles":    len(report.Articles),
		"failed_urls": report.FailedURLs(),
		"elapsed_ms":  now().Sub(started).Milliseconds(),
	})
	return nil
}
