package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/collex/pkg/mailer"
	"github.com/example/collex/pkg/messagequeue"
)

// ListingEventType names a listing lifecycle event.
type ListingEventType string

const (
	ListingCreated ListingEventType = "listing.created"
	ListingUpdated ListingEventType = "listing.updated"
	ListingDeleted ListingEventType = "listing.deleted"
)

// ListingEvent is published after every successful listing write.
type ListingEvent struct {
	Type       ListingEventType `json:"type"`
	ListingID  string           `json:"listing_id"`
	OwnerID    string           `json:"owner_id"`
	OwnerEmail string           `json:"owner_email,omitempty"`
	Title      string           `json:"title,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// ListingEventPublisher emits listing lifecycle events.
type ListingEventPublisher interface {
	PublishListingEvent(ctx context.Context, ev ListingEvent) error
}

type queueListingPublisher struct {
	mq    messagequeue.MessageQueue
	queue string
}

// NewQueueListingPublisher publishes listing events as JSON to a queue.
func NewQueueListingPublisher(mq messagequeue.MessageQueue, queue string) ListingEventPublisher {
	return &queueListingPublisher{mq: mq, queue: queue}
}

func (p *queueListingPublisher) PublishListingEvent(ctx context.Context, ev ListingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode listing event: %w", err)
	}
	return p.mq.Publish(ctx, p.queue, body)
}

// ListingEventNotifier consumes listing events and mails sellers.
type ListingEventNotifier struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewListingEventNotifier creates a ListingEventNotifier.
func NewListingEventNotifier(m mailer.Mailer, logger *zap.Logger) *ListingEventNotifier {
	return &ListingEventNotifier{mailer: m, logger: logger}
}

// Handle processes one queued listing event.
func (n *ListingEventNotifier) Handle(ctx context.Context, body []byte) error {
	var ev ListingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode listing event: %w", err)
	}
	n.logger.Debug("Listing event received", zap.String("type", string(ev.Type)), zap.String("listingID", ev.ListingID))

	if ev.Type != ListingCreated || ev.OwnerEmail == "" {
		return nil
	}
	return n.mailer.Send(ctx, mailer.Message{
		To:      ev.OwnerEmail,
		Subject: "New Listing Created",
		Body:    fmt.Sprintf("Your listing '%s' has been created successfully.", ev.Title),
	})
}

func publishListingEvent(ctx context.Context, p ListingEventPublisher, logger *zap.Logger, ev ListingEvent) {
	if p == nil {
		return
	}
	if err := p.PublishListingEvent(ctx, ev); err != nil {
		logger.Warn("Failed to publish listing event",
			zap.String("type", string(ev.Type)),
			zap.String("listingID", ev.ListingID),
			zap.Error(err))
	}
}
