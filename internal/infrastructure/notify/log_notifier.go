package notify

import (
	"context"

	"github.com/cortecaja/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// LogNotifier writes messages to the log instead of delivering them.
// It is the development default and never fails.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message
func (n *LogNotifier) Notify(_ context.Context, msg notification.Message) error {
	n.logger.Info("Notification",
		zap.String("notification_id", msg.NotificationID.String()),
		zap.String("to", msg.To),
		zap.String("recipient_name", msg.RecipientName),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
