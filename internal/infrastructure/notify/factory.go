package notify

import (
	"fmt"

	"github.com/cortecaja/backend/internal/domain/notification"
	"github.com/cortecaja/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	_ notification.Notifier = (*RedisNotifier)(nil)
	_ notification.Notifier = (*LogNotifier)(nil)
)

// NewNotifier returns the notifier selected by cfg.Driver. The redis driver
// needs a client.
func NewNotifier(cfg config.NotificationConfig, client *redis.Client, logger *zap.Logger) (notification.Notifier, error) {
	switch cfg.Driver {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("notification driver redis requires a redis client")
		}
		return NewRedisNotifier(client, cfg.Channel, cfg.Timeout, logger), nil
	case "log", "":
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown notification driver %q", cfg.Driver)
	}
}
