package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lnky-dev/lnky/internal/app/model"
	apprepository "github.com/lnky-dev/lnky/internal/app/repository"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ViewConsumer consumes profile view events from NATS JetStream, persists
// them and bumps the per-user view counter.
type ViewConsumer struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	repo   apprepository.ViewEventRepository
}

// NewViewConsumer creates a new profile view consumer.
func NewViewConsumer(js nats.JetStreamContext, logger *zap.Logger, repo apprepository.ViewEventRepository) *ViewConsumer {
	return &ViewConsumer{js: js, logger: logger, repo: repo}
}

// Start ensures the stream and durable consumer exist, then begins consuming.
func (c *ViewConsumer) Start() error {
	_, err := c.js.StreamInfo(model.ViewStreamName)
	if err != nil {
		_, err = c.js.AddStream(&nats.StreamConfig{
			Name:     model.ViewStreamName,
			Subjects: []string{model.ViewStreamSubject},
			MaxBytes: model.ViewStreamMaxBytes,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}
	}

	_, err = c.js.ConsumerInfo(model.ViewStreamName, model.ViewConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ViewStreamName, &nats.ConsumerConfig{
			Durable:   model.ViewConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ViewStreamSubject, model.ViewConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(sub)
	return nil
}

func (c *ViewConsumer) consume(sub *nats.Subscription) {
	ctx := context.Background()
	for {
		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && err != nats.ErrTimeout {
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			var event model.ViewEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal view event", zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.Create(ctx, &event); err != nil {
				c.logger.Error("failed to store view event",
					zap.String("id", event.ID),
					zap.String("username", event.Username),
					zap.Error(err))
				msg.Nak()
				continue
			}

			if err := c.repo.IncrementProfileViews(ctx, event.UserID); err != nil {
				// The event row is already durable; the counter can be
				// rebuilt from it, so ack anyway.
				c.logger.Warn("failed to bump profile view counter",
					zap.String("user_id", event.UserID),
					zap.Error(err))
			}

			c.logger.Debug("view event stored",
				zap.String("id", event.ID),
				zap.String("username", event.Username),
				zap.Time("timestamp", event.Timestamp),
			)

			msg.Ack()
		}
	}
}
