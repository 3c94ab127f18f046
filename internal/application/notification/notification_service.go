package notification

import (
	"context"
	"time"

	"github.com/cortecaja/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationResponse is the read model returned to the caller
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	ReportID  *uuid.UUID `json:"report_id,omitempty"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Sent      bool       `json:"sent"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationService serves a user's notification inbox
type NotificationService struct {
	repo notification.Repository
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo notification.Repository) *NotificationService {
	return &NotificationService{repo: repo}
}

// ListForUser returns the user's notifications newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]NotificationResponse, error) {
	records, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]NotificationResponse, 0, len(records))
	for _, n := range records {
		result = append(result, NotificationResponse{
			ID:        n.ID,
			ReportID:  n.ReportID,
			Subject:   n.Subject,
			Message:   n.Message,
			Sent:      n.Sent,
			SentAt:    n.SentAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return result, nil
}
