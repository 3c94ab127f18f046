package persistence

import (
	"context"
	"errors"

	"github.com/cortecaja/backend/internal/domain/notification"
	"github.com/cortecaja/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Save inserts a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error
}

// Update persists the delivery state of a notification
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"sent":    n.Sent,
			"sent_at": n.SentAt,
		}).Error
}

// FindByReportAndUser returns nil, nil when the user has no record for the report
func (r *GormNotificationRepository) FindByReportAndUser(ctx context.Context, reportID, userID uuid.UUID) (*notification.Notification, error) {
	var model models.NotificationModel
	err := r.db.WithContext(ctx).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser returns the user's notifications newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	var rows []models.NotificationModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	list := make([]*notification.Notification, len(rows))
	for i := range rows {
		list[i] = rows[i].ToDomain()
	}
	return list, nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
