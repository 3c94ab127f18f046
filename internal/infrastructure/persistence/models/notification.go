package models

import (
	"time"

	"github.com/cortecaja/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for notification.Notification.
// (report_id, user_id) is unique so redelivered events never duplicate a record.
type NotificationModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_notifications_report_user,priority:2"`
	ReportID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_notifications_report_user,priority:1"`
	Subject   string     `gorm:"type:varchar(255);not null"`
	Message   string     `gorm:"type:text;not null"`
	Sent      bool       `gorm:"not null;default:false"`
	SentAt    *time.Time
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		ReportID:  m.ReportID,
		Subject:   m.Subject,
		Message:   m.Message,
		Sent:      m.Sent,
		SentAt:    m.SentAt,
		CreatedAt: m.CreatedAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		ReportID:  n.ReportID,
		Subject:   n.Subject,
		Message:   n.Message,
		Sent:      n.Sent,
		SentAt:    n.SentAt,
		CreatedAt: n.CreatedAt,
	}
}
