package persistence

import (
	"context"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReportRepository implements cashdrawer.ReportRepository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// Save inserts a report; reports are never updated
func (r *GormReportRepository) Save(ctx context.Context, report *cashdrawer.ReconciliationReport) error {
	return r.db.WithContext(ctx).Create(models.ReconciliationReportModelFromDomain(report)).Error
}

// FindByID loads one report
func (r *GormReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.ReconciliationReport, error) {
	var model models.ReconciliationReportModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err, "reconciliation report")
	}
	return model.ToDomain(), nil
}

// FindAll returns every report, newest first
func (r *GormReportRepository) FindAll(ctx context.Context) ([]*cashdrawer.ReconciliationReport, error) {
	var rows []models.ReconciliationReportModel
	if err := r.db.WithContext(ctx).Order("generated_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reports := make([]*cashdrawer.ReconciliationReport, len(rows))
	for i := range rows {
		reports[i] = rows[i].ToDomain()
	}
	return reports, nil
}

var _ cashdrawer.ReportRepository = (*GormReportRepository)(nil)
