package persistence

import (
	"context"
	"fmt"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMovementRepository implements cashdrawer.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// SaveAll inserts movements without checking session state
func (r *GormMovementRepository) SaveAll(ctx context.Context, movements []*cashdrawer.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.CashMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.CashMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// AppendIfSessionOpen inserts the movement with a single INSERT ... SELECT
// that only yields a row while the session is OPEN. The SELECT share-locks the
// session row, so it waits for an uncommitted close and re-checks the state
// against the committed row: a concurrent close either commits first (nothing
// inserted) or waits for the append (movement included).
func (r *GormMovementRepository) AppendIfSessionOpen(ctx context.Context, m *cashdrawer.Movement) (bool, error) {
	db := r.db.WithContext(ctx)
	stmt := fmt.Sprintf(
		`INSERT INTO cash_movements (id, session_id, direction, category, amount, recorded_at) `+
			`SELECT %s, s.id, %s, %s, %s, %s FROM cash_sessions s WHERE s.id = ? AND s.state = ?%s`,
		castParam(db, "uuid"),
		castParam(db, "varchar"),
		castParam(db, "varchar"),
		castParam(db, "numeric"),
		castParam(db, "timestamptz"),
		shareLockOf(db, "s"),
	)
	result := db.Exec(stmt,
		m.ID, string(m.Direction), m.Category, m.Amount, m.RecordedAt,
		m.SessionID, string(cashdrawer.SessionStateOpen),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindBySession returns the session's movements newest first
func (r *GormMovementRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]cashdrawer.Movement, error) {
	var rows []models.CashMovementModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("recorded_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	movements := make([]cashdrawer.Movement, len(rows))
	for i := range rows {
		movements[i] = rows[i].ToDomain()
	}
	return movements, nil
}

// FindBySessions loads movements for many sessions in one query
func (r *GormMovementRepository) FindBySessions(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID][]cashdrawer.Movement, error) {
	grouped := make(map[uuid.UUID][]cashdrawer.Movement, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return grouped, nil
	}
	var rows []models.CashMovementModel
	err := r.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("recorded_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		grouped[rows[i].SessionID] = append(grouped[rows[i].SessionID], rows[i].ToDomain())
	}
	return grouped, nil
}

// DeleteBySession removes every movement of a session
func (r *GormMovementRepository) DeleteBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.CashMovementModel{})
	return result.RowsAffected, result.Error
}

var _ cashdrawer.MovementRepository = (*GormMovementRepository)(nil)
