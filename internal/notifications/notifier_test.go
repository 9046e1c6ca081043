package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gitforum/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishNotificationReachesUserChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, UserChannel(7))
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	notifier := NewNotifier(rdb)
	notifier.PublishNotification(ctx, &models.Notification{
		ID:          3,
		RecipientID: 7,
		SenderID:    2,
		Type:        models.NotificationLike,
		Message:     "alice liked your post",
	})

	select {
	case msg := <-sub.Channel():
		var got models.Notification
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.EqualValues(t, 3, got.ID)
		assert.EqualValues(t, 7, got.RecipientID)
		assert.Equal(t, models.NotificationLike, got.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published notification")
	}
}

func TestPublishWithoutRedisIsNoOp(t *testing.T) {
	notifier := NewNotifier(nil)
	// Must not panic or block.
	notifier.PublishNotification(context.Background(), &models.Notification{RecipientID: 1})
	assert.NoError(t, notifier.PublishUser(context.Background(), 1, "x"))
	assert.NoError(t, notifier.PublishBroadcast(context.Background(), "x"))
}

func TestHubWiringForwardsUserMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	notifier := NewNotifier(rdb)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	_, err := hub.Register(9, nil)
	require.NoError(t, err)

	// Registration alone proves wiring starts cleanly; delivery to a nil
	// conn is dropped by TrySend without panicking.
	require.NoError(t, notifier.PublishUser(ctx, 9, `{"id":1}`))
	assert.True(t, hub.IsOnline(9))

	_ = hub.Shutdown(context.Background())
}
