package notification

import (
	"context"
	"time"

	"github.com/cortecaja/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Notification is an in-app record of a message addressed to one user.
// Sent flips to true once the Notifier accepted the message.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ReportID  *uuid.UUID
	Subject   string
	Message   string
	Sent      bool
	SentAt    *time.Time
	CreatedAt time.Time
}

// NewNotification creates an unsent notification
func NewNotification(userID uuid.UUID, reportID *uuid.UUID, subject, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("recipient is required")
	}
	if subject == "" {
		return nil, shared.NewValidationError("subject is required")
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		ReportID:  reportID,
		Subject:   subject,
		Message:   message,
		CreatedAt: shared.Now(),
	}, nil
}

// MarkSent records a successful delivery
func (n *Notification) MarkSent(at time.Time) {
	n.Sent = true
	n.SentAt = &at
}

// Message is what a Notifier delivers to one recipient
type Message struct {
	NotificationID uuid.UUID `json:"notification_id"`
	To             string    `json:"to"`
	RecipientName  string    `json:"recipient_name"`
	Subject        string    `json:"subject"`
	Text           string    `json:"text"`
	HTML           string    `json:"html"`
}

// Notifier delivers a message to an interested party
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Repository persists notification records
type Repository interface {
	Save(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	// FindByReportAndUser supports idempotent redelivery; returns nil, nil when absent
	FindByReportAndUser(ctx context.Context, reportID, userID uuid.UUID) (*Notification, error)
	// FindByUser returns the user's notifications newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error)
}
