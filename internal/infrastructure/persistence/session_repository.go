package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const resourceSession = "cash session"

// GormSessionRepository implements cashdrawer.SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// Save inserts a new session. Sessions whose close fields disagree with their
// state are rejected before reaching the database.
func (r *GormSessionRepository) Save(ctx context.Context, session *cashdrawer.Session) error {
	if err := session.CheckInvariants(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(models.CashSessionModelFromDomain(session)).Error
}

// FindByID loads a session
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashdrawer.Session, error) {
	var model models.CashSessionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateNotFound(err, resourceSession)
	}
	return model.ToDomain(), nil
}

// CloseIfOpen moves an OPEN session to CLOSED in one UPDATE guarded by state
func (r *GormSessionRepository) CloseIfOpen(ctx context.Context, id uuid.UUID, finalAmount decimal.Decimal, closedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CashSessionModel{}).
		Where("id = ? AND state = ?", id, cashdrawer.SessionStateOpen).
		Updates(map[string]any{
			"state":        cashdrawer.SessionStateClosed,
			"final_amount": finalAmount,
			"closed_at":    closedAt,
			"updated_at":   closedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete removes the session and its movements. The foreign key cascades as
// well; the explicit delete keeps SQLite and PostgreSQL behaving the same.
func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := NewGormMovementRepository(tx).DeleteBySession(ctx, id); err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.CashSessionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return translateNotFound(gorm.ErrRecordNotFound, resourceSession)
		}
		return nil
	})
}

// FindAll returns sessions matching filter, newest first unless the filter
// names a whitelisted sort column
func (r *GormSessionRepository) FindAll(ctx context.Context, filter cashdrawer.SessionFilter) ([]*cashdrawer.Session, error) {
	query := r.db.WithContext(ctx).Model(&models.CashSessionModel{})

	if filter.OpenedFrom != nil {
		query = query.Where("opened_at >= ?", *filter.OpenedFrom)
	}
	if filter.OpenedTo != nil {
		query = query.Where("opened_at < ?", *filter.OpenedTo)
	}
	if cashier := strings.TrimSpace(filter.Cashier); cashier != "" {
		query = query.Where(`LOWER(cashier_name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(cashier))+"%")
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}

	var rows []models.CashSessionModel
	field := ValidateSortField(filter.SortBy, SessionSortFields, "opened_at")
	dir := ValidateSortOrder(filter.SortOrder)
	if err := query.Order(field + " " + dir).Order("id " + dir).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSessions(rows), nil
}

// FindPreviousFinal returns the latest other FINAL session opened strictly
// before final, or nil when final is the first checkpoint.
func (r *GormSessionRepository) FindPreviousFinal(ctx context.Context, final *cashdrawer.Session) (*cashdrawer.Session, error) {
	var model models.CashSessionModel
	err := r.db.WithContext(ctx).
		Where("kind = ? AND id <> ? AND opened_at < ?", cashdrawer.SessionKindFinal, final.ID, final.OpenedAt).
		Order("opened_at DESC").
		Order("id DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindShiftsInRange returns SHIFT sessions with floor < opened_at <= ceiling, oldest first
func (r *GormSessionRepository) FindShiftsInRange(ctx context.Context, floor, ceiling time.Time) ([]*cashdrawer.Session, error) {
	var rows []models.CashSessionModel
	err := r.db.WithContext(ctx).
		Where("kind = ? AND opened_at > ? AND opened_at <= ?", cashdrawer.SessionKindShift, floor, ceiling).
		Order("opened_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toSessions(rows), nil
}

func toSessions(rows []models.CashSessionModel) []*cashdrawer.Session {
	sessions := make([]*cashdrawer.Session, len(rows))
	for i := range rows {
		sessions[i] = rows[i].ToDomain()
	}
	return sessions
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ cashdrawer.SessionRepository = (*GormSessionRepository)(nil)
