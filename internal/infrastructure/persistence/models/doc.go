// Package models contains the GORM persistence models. Domain entities carry
// no ORM tags; each model converts with ToDomain and FromDomain and the
// repositories only ever read and write models.
//
//   - base.go: shared id/timestamp columns
//   - cashdrawer.go: cash_sessions, cash_movements, reconciliation_reports
//   - identity.go: users
//   - notification.go: notifications
//   - outbox.go: outbox_events for event delivery
//
// Tags avoid PostgreSQL-only defaults so the same models migrate on the
// SQLite databases used by repository tests.
package models
