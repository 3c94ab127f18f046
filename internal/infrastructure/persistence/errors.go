package persistence

import (
	"errors"
	"strings"

	"github.com/cortecaja/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateNotFound maps GORM's missing-row error onto the domain error for resource
func translateNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}

// isUniqueViolation detects duplicate keys on PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// castParam returns a placeholder carrying an explicit type on PostgreSQL.
// Parameters in an INSERT ... SELECT target list are otherwise resolved as text.
func castParam(db *gorm.DB, pgType string) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "CAST(? AS " + pgType + ")"
	}
	return "?"
}

// shareLockOf row-locks alias in FOR SHARE mode on PostgreSQL. SQLite
// serializes writers and has no row locks.
func shareLockOf(db *gorm.DB, alias string) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return " FOR SHARE OF " + alias
	}
	return ""
}
