// Package events carries post-change notifications between the write path
// and live subscribers (feed caches, the pulse dashboard) over Redis pub/sub.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// PostChannel is the pub/sub channel all post-change events flow through.
const PostChannel = "civicpulse:posts"

// Kind tags what changed about a post.
type Kind string

const (
	KindCreated    Kind = "created"
	KindEngagement Kind = "engagement"
	KindStatus     Kind = "status"
	KindUpdate     Kind = "update"
	KindDeleted    Kind = "deleted"
)

// PostEvent is the payload published for every post mutation.
type PostEvent struct {
	PostID uuid.UUID `json:"postId"`
	Kind   Kind      `json:"kind"`
	At     time.Time `json:"at"`
}

// Publisher emits post-change events. The write path treats publishing as
// best-effort: a failed publish never fails the originating operation.
type Publisher interface {
	PublishPostChange(ctx context.Context, event PostEvent)
}

// RedisPublisher publishes post events to the shared Redis channel.
type RedisPublisher struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewRedisPublisher creates a publisher over an existing Redis client.
func NewRedisPublisher(client rueidis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		logger: logger.Named("events_publisher"),
	}
}

// PublishPostChange serializes and publishes the event. Failures are logged
// and dropped so the caller's write is never blocked on fan-out.
func (p *RedisPublisher) PublishPostChange(ctx context.Context, event PostEvent) {
	payload, err := sonic.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal post event", zap.Error(err))
		return
	}

	cmd := p.client.B().Publish().Channel(PostChannel).Message(string(payload)).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		p.logger.Warn("Failed to publish post event",
			zap.String("postId", event.PostID.String()),
			zap.Error(err))
	}
}

// Subscriber delivers post events to a handler until the context ends.
type Subscriber struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewSubscriber creates a subscriber over an existing Redis client.
func NewSubscriber(client rueidis.Client, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		client: client,
		logger: logger.Named("events_subscriber"),
	}
}

// Listen blocks, invoking handler for each event, until ctx is canceled or
// the connection drops. Malformed payloads are logged and skipped.
func (s *Subscriber) Listen(ctx context.Context, handler func(PostEvent)) error {
	err := s.client.Receive(ctx, s.client.B().Subscribe().Channel(PostChannel).Build(),
		func(msg rueidis.PubSubMessage) {
			var event PostEvent
			if err := sonic.Unmarshal([]byte(msg.Message), &event); err != nil {
				s.logger.Warn("Dropping malformed post event", zap.Error(err))
				return
			}

			handler(event)
		})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("post event subscription ended: %w", err)
	}

	return nil
}
