// Package notify delivers notification messages to external channels.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cortecaja/backend/internal/domain/notification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier publishes each message as JSON on a pub/sub channel. Mail
// or chat relays subscribe to the channel and do the actual delivery.
type RedisNotifier struct {
	client  redis.UniversalClient
	channel string
	timeout time.Duration
	logger  *zap.Logger
}

// envelope is the published payload
type envelope struct {
	notification.Message
	PublishedAt time.Time `json:"published_at"`
}

// NewRedisNotifier creates a notifier publishing on channel
func NewRedisNotifier(client redis.UniversalClient, channel string, timeout time.Duration, logger *zap.Logger) *RedisNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, channel: channel, timeout: timeout, logger: logger}
}

// Notify publishes msg. Zero subscribers is reported as an error so the
// event is retried until a relay is listening.
func (n *RedisNotifier) Notify(ctx context.Context, msg notification.Message) error {
	if msg.To == "" {
		return errors.New("notification recipient is empty")
	}
	payload, err := json.Marshal(envelope{Message: msg, PublishedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	receivers, err := n.client.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish notification to %s: %w", n.channel, err)
	}
	if receivers == 0 {
		return fmt.Errorf("no subscribers on channel %s", n.channel)
	}

	n.logger.Debug("Notification published",
		zap.String("channel", n.channel),
		zap.String("notification_id", msg.NotificationID.String()),
		zap.Int64("receivers", receivers),
	)
	return nil
}
