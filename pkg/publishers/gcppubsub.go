package publishers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type pubsubSender struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

func newPubSubSender(ctx context.Context, cfg *PubSubConfig) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("pubsub configuration is missing")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &pubsubSender{client: client, topic: client.Topic(cfg.Topic)}, nil
}

// Send publishes and blocks until the server acknowledges the message.
func (s *pubsubSender) Send(ctx context.Context, msg queueMessage) (string, error) {
	res := s.topic.Publish(ctx, &pubsub.Message{
		Data: msg.Body,
		Attributes: map[string]string{
			"event_id":      msg.EventID,
			"article_count": strconv.Itoa(msg.ArticleCount),
		},
	})
	return res.Get(ctx)
}

// Close flushes the topic's publish goroutines and releases the client.
func (s *pubsubSender) Close() error {
	s.topic.Stop()
	return s.client.Close()
}
