package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// queueMessage is the provider-neutral form of a digest on a queue.
type queueMessage struct {
	Body         []byte
	EventID      string
	ArticleCount int
	Subject      string
}

func newQueueMessage(evt Event, format string) (queueMessage, error) {
	body, err := json.Marshal(evt.Body(format))
	if err != nil {
		return queueMessage{}, fmt.Errorf("marshal event: %w", err)
	}
	return queueMessage{
		Body:         body,
		EventID:      evt.ID,
		ArticleCount: len(evt.Articles),
		Subject:      evt.Title,
	}, nil
}

// queueSender hands a message to one provider and returns its message id.
type queueSender interface {
	Send(ctx context.Context, msg queueMessage) (string, error)
}

// queuePublisher delivers digests through a queueSender.
type queuePublisher struct {
	id       string
	format   string
	provider string
	sender   queueSender
	log      Logger
}

func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}
	sender, err := dialQueue(ctx, *cfg.Queue)
	if err != nil {
		return nil, err
	}
	return &queuePublisher{
		id:       cfg.ID,
		format:   cfg.Format,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func dialQueue(ctx context.Context, q QueueConfig) (queueSender, error) {
	switch q.Provider {
	case QueueProviderAWSSQS:
		return newSQSSender(ctx, q.SQS)
	case QueueProviderAWSSNS:
		return newSNSSender(ctx, q.SNS)
	case QueueProviderGCP:
		return newPubSubSender(ctx, q.PubSub)
	default:
		return nil, fmt.Errorf("queue provider %q is not supported", q.Provider)
	}
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return TypeQueue }

func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newQueueMessage(evt, p.format)
	if err != nil {
		return err
	}
	msgID, err := p.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("%s send: %w", p.provider, err)
	}
	p.log.DebugObj("queue publisher delivered event", "publisher_queue_delivery", map[string]any{
		"publisher_id": p.id,
		"provider":     p.provider,
		"event_id":     evt.ID,
		"message_id":   msgID,
	})
	return nil
}

// Close releases provider resources when the sender holds any.
func (p *queuePublisher) Close() error {
	if c, ok := p.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
