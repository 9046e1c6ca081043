// Package notifications provides real-time notification delivery over
// websockets, with Redis pub/sub fanning messages across instances.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"strconv"

	"gitforum/internal/models"

	"github.com/redis/go-redis/v9"
)

// Notifier publishes notification payloads into Redis channels. A nil Redis
// client turns every publish into a no-op, so the API keeps working without
// realtime delivery.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishNotification pushes a persisted notification to its recipient's
// channel. Delivery is best effort; the notification row is already stored
// and will show up in the feed regardless.
func (n *Notifier) PublishNotification(ctx context.Context, notification *models.Notification) {
	if n.rdb == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("marshal notification %d: %v", notification.ID, err)
		return
	}
	if err := n.rdb.Publish(ctx, UserChannel(notification.RecipientID), payload).Err(); err != nil {
		log.Printf("publish notification %d: %v", notification.ID, err)
	}
}

// PublishUser sends a raw payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

// StartPatternSubscriber subscribes to `notifications:user:*` and the
// broadcast channel, calling onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", "notifications:broadcast")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
