package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Adda-Baaj/regwatch/internal/domain"
	"github.com/Adda-Baaj/regwatch/internal/logger"
)

// Logger is the structured logger publishers report through.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger { return logger.Ensure(log) }

// Publisher delivers a notification event to one destination.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Event is one run's notification: the accepted articles plus their rendered
// Block Kit message.
type Event struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	GeneratedAt time.Time                `json:"generated_at"`
	Articles    []domain.RelevantArticle `json:"articles"`
	Blocks      []Block                  `json:"blocks"`
}

// SlackPayload is the body accepted by Slack incoming webhooks.
type SlackPayload struct {
	Blocks []Block `json:"blocks"`
}

// SlackPayload returns the webhook body for the event.
func (e Event) SlackPayload() SlackPayload {
	return SlackPayload{Blocks: e.Blocks}
}

// Body returns what a publisher configured with format sends.
func (e Event) Body(format string) any {
	if format == FormatEvent {
		return e
	}
	return e.SlackPayload()
}

// NewDigestEvent renders articles into an event. now should already be in the
// reporting timezone.
func NewDigestEvent(title string, articles []domain.RelevantArticle, now time.Time) Event {
	arts := make([]domain.RelevantArticle, len(articles))
	copy(arts, articles)
	if arts == nil {
		arts = []domain.RelevantArticle{}
	}
	return Event{
		ID:          uuid.NewString(),
		Title:       title,
		GeneratedAt: now,
		Articles:    arts,
		Blocks:      BuildDigestBlocks(title, arts, now),
	}
}

// PublishAll sends evt to every publisher and joins the failures.
func PublishAll(ctx context.Context, pubs []Publisher, evt Event, log Logger) error {
	log = ensureLogger(log)

	var errs []error
	for _, p := range pubs {
		if err := p.Publish(ctx, evt); err != nil {
			log.ErrorObj("publisher failed", "publish_failed", map[string]any{
				"publisher_id": p.ID(),
				"type":         p.Type(),
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("publisher %s: %w", p.ID(), err))
			continue
		}
		log.InfoObj("notification delivered", "publish_ok", map[string]any{
			"publisher_id": p.ID(),
			"type":         p.Type(),
			"articles":     len(evt.Articles),
			"blocks":       len(evt.Blocks),
		})
	}
	return errors.Join(errs...)
}

// CloseAll closes every publisher that holds provider resources.
func CloseAll(pubs []Publisher) error {
	var errs []error
	for _, p := range pubs {
		c, ok := p.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher %s: %w", p.ID(), err))
		}
	}
	return errors.Join(errs...)
}
