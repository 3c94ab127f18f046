package notification

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/identity"
	"github.com/cortecaja/backend/internal/domain/notification"
	"github.com/cortecaja/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReconciliationNotifiedHandler tells every manager that a final
// reconciliation report is available
type ReconciliationNotifiedHandler struct {
	users         identity.UserRepository
	notifications notification.Repository
	notifier      notification.Notifier
	loc           *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewReconciliationNotifiedHandler creates a new handler for reconciliation events
func NewReconciliationNotifiedHandler(
	users identity.UserRepository,
	notifications notification.Repository,
	notifier notification.Notifier,
	loc *time.Location,
	logger *zap.Logger,
) *ReconciliationNotifiedHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReconciliationNotifiedHandler{
		users:         users,
		notifications: notifications,
		notifier:      notifier,
		loc:           loc,
		now:           time.Now,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReconciliationNotifiedHandler) EventTypes() []string {
	return []string{cashdrawer.EventTypeReconciliationGenerated}
}

// Handle records and delivers one notification per manager. Managers that
// were already notified for the report are skipped, so a retried event
// only re-attempts the failed deliveries.
func (h *ReconciliationNotifiedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	generated, ok := event.(*cashdrawer.ReconciliationGeneratedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			cashdrawer.EventTypeReconciliationGenerated, event.EventType())
	}

	managers, err := h.users.FindByRole(ctx, identity.RoleManager)
	if err != nil {
		return fmt.Errorf("load managers: %w", err)
	}
	if len(managers) == 0 {
		h.logger.Warn("No managers to notify",
			zap.String("report_id", generated.ReportID.String()))
		return nil
	}

	content := reportContent(generated, h.loc)

	var errs []error
	for _, manager := range managers {
		if err := h.notifyOne(ctx, generated, manager, content); err != nil {
			h.logger.Error("Failed to notify manager",
				zap.String("report_id", generated.ReportID.String()),
				zap.String("user_id", manager.ID.String()),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *ReconciliationNotifiedHandler) notifyOne(
	ctx context.Context,
	event *cashdrawer.ReconciliationGeneratedEvent,
	manager *identity.User,
	content reportMessage,
) error {
	record, err := h.notifications.FindByReportAndUser(ctx, event.ReportID, manager.ID)
	if err != nil {
		return err
	}
	if record != nil && record.Sent {
		return nil
	}
	if record == nil {
		reportID := event.ReportID
		record, err = notification.NewNotification(manager.ID, &reportID, content.subject, content.text)
		if err != nil {
			return err
		}
		if err := h.notifications.Save(ctx, record); err != nil {
			return err
		}
	}

	msg := notification.Message{
		NotificationID: record.ID,
		To:             manager.Email,
		RecipientName:  manager.Name,
		Subject:        content.subject,
		Text:           fmt.Sprintf("Hola %s,\n\n%s", manager.Name, content.text),
		HTML:           fmt.Sprintf("<p>Hola %s,</p>%s", html.EscapeString(manager.Name), content.html),
	}
	if err := h.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("deliver to %s: %w", manager.Email, err)
	}

	record.MarkSent(h.now())
	return h.notifications.Update(ctx, record)
}

type reportMessage struct {
	subject string
	text    string
	html    string
}

func reportContent(e *cashdrawer.ReconciliationGeneratedEvent, loc *time.Location) reportMessage {
	date := e.RangeCeiling.In(loc).Format("2006-01-02")
	text := fmt.Sprintf(`Se ha generado el reporte final de corte de caja correspondiente a la fecha %s.

Puedes consultar los archivos en las siguientes rutas:

PDF: %s
Excel: %s

ID del corte final: %s
ID del reporte: %s
`, date, e.PDFURL, e.XLSXURL, e.FinalSessionID, e.ReportID)

	pdf := html.EscapeString(e.PDFURL)
	xlsx := html.EscapeString(e.XLSXURL)
	body := fmt.Sprintf(`<p>Se ha generado el <strong>reporte final de corte de caja</strong> correspondiente a la fecha %s.</p>
<p>Puedes consultar los archivos en las siguientes rutas:</p>
<ul>
  <li>PDF: <a href="%s">%s</a></li>
  <li>Excel: <a href="%s">%s</a></li>
</ul>
<p>ID del corte final: <strong>%s</strong><br/>ID del reporte: <strong>%s</strong></p>
`, date, pdf, pdf, xlsx, xlsx, e.FinalSessionID, e.ReportID)

	return reportMessage{
		subject: "Reporte final de corte de caja - " + date,
		text:    text,
		html:    body,
	}
}

var _ shared.EventHandler = (*ReconciliationNotifiedHandler)(nil)
