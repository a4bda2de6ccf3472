package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lnky-dev/lnky/internal/app/model"
	"github.com/nats-io/nats.go"
)

// ViewPublisher publishes profile view events to NATS JetStream. Publishing
// is fire-and-forget from the caller's perspective; a lost view never affects
// the link collection.
type ViewPublisher struct {
	js nats.JetStreamContext
}

// NewViewPublisher creates a new profile view publisher.
func NewViewPublisher(js nats.JetStreamContext) *ViewPublisher {
	return &ViewPublisher{js: js}
}

// Publish publishes a view event for the given profile to the stream.
func (p *ViewPublisher) Publish(userID, username, ip, userAgent string) error {
	event := model.ViewEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.ViewStreamSubject, data)
	return err
}
