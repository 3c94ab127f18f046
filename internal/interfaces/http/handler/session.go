package handler

import (
	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/gin-gonic/gin"
)

// SessionHandler serves cash sessions and their movements
type SessionHandler struct {
	BaseHandler
	sessionService *appcash.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *appcash.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Open godoc
// @ID           openSession
// @Summary      Open a cash session
// @Description  Open a SHIFT or FINAL session for the authenticated cashier
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body OpenSessionRequest true "Session to open"
// @Success      201 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions [post]
func (h *SessionHandler) Open(c *gin.Context) {
	claims, userID, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req OpenSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.Open(c.Request.Context(), appcash.OpenSessionInput{
		CashierID:     userID,
		CashierName:   claims.Name,
		StartingFloat: req.StartingFloat,
		ShiftLabel:    req.ShiftLabel,
		Kind:          req.Kind,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSessionResponse(session))
}

// CreateClosed godoc
// @ID           createClosedSession
// @Summary      Record a closed session
// @Description  Record a whole shift from its totals; movements are synthesized for each non-zero amount
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request body ClosedSessionRequest true "Shift totals"
// @Success      201 {object} APIResponse[ClosedSessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/closed [post]
func (h *SessionHandler) CreateClosed(c *gin.Context) {
	claims, userID, ok := caller(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req ClosedSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, movements, err := h.sessionService.CreateClosedWithTotals(c.Request.Context(), appcash.ClosedSessionInput{
		CashierID:     userID,
		CashierName:   claims.Name,
		ShiftLabel:    req.ShiftLabel,
		StartingFloat: req.StartingFloat,
		CashSales:     req.CashSales,
		CardSales:     req.CardSales,
		Expenses:      req.Expenses,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := ClosedSessionResponse{
		Session:   toSessionResponse(session),
		Movements: make([]MovementResponse, len(movements)),
	}
	for i, m := range movements {
		resp.Movements[i] = toMovementResponse(m)
	}
	h.Created(c, resp)
}

// List godoc
// @ID           listSessions
// @Summary      Session history
// @Description  List sessions newest first with per-session totals and a summary across the list
// @Tags         sessions
// @Produce      json
// @Param        date query string false "Opening day in the reconciliation timezone" format(date)
// @Param        cashier query string false "Case-insensitive substring of the cashier name"
// @Param        sort_by query string false "opened_at, closed_at, cashier_name, starting_float or final_amount"
// @Param        sort_order query string false "asc or desc" Enums(asc, desc)
// @Success      200 {object} APIResponse[SessionHistoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	filter := appcash.ListSessionsFilter{
		Cashier:   c.Query("cashier"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if day := c.Query("date"); day != "" {
		date, err := h.sessionService.ParseDay(day)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		filter.Date = &date
	}

	history, err := h.sessionService.ListSessions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionHistoryResponse(history))
}

// Get godoc
// @ID           getSession
// @Summary      Session detail
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} APIResponse[SessionDetailResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "session")
	if !ok {
		return
	}

	detail, err := h.sessionService.GetSessionDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SessionDetailResponse{
		Session:   toSessionResponse(detail.Session),
		Totals:    detail.Totals,
		Movements: toMovementResponses(detail.Movements),
	})
}

// Close godoc
// @ID           closeSession
// @Summary      Close a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body CloseSessionRequest true "Counted amount"
// @Success      200 {object} APIResponse[SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/{id}/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	id, ok := h.pathID(c, "session")
	if !ok {
		return
	}
	var req CloseSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.sessionService.Close(c.Request.Context(), id, req.FinalAmount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(session))
}

// Delete godoc
// @ID           deleteSession
// @Summary      Delete a session
// @Description  Delete a session together with its movements
// @Tags         sessions
// @Param        id path string true "Session ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "session")
	if !ok {
		return
	}
	if err := h.sessionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordMovement godoc
// @ID           recordMovement
// @Summary      Record a movement
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body RecordMovementRequest true "Movement"
// @Success      201 {object} APIResponse[MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/{id}/movements [post]
func (h *SessionHandler) RecordMovement(c *gin.Context) {
	id, ok := h.pathID(c, "session")
	if !ok {
		return
	}
	var req RecordMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}

	movement, err := h.sessionService.RecordMovement(c.Request.Context(), id, appcash.RecordMovementInput{
		Direction: req.Direction,
		Category:  req.Category,
		Amount:    req.Amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMovementResponse(movement))
}

// ListMovements godoc
// @ID           listMovements
// @Summary      List a session's movements
// @Tags         sessions
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Success      200 {object} APIResponse[[]MovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sessions/{id}/movements [get]
func (h *SessionHandler) ListMovements(c *gin.Context) {
	id, ok := h.pathID(c, "session")
	if !ok {
		return
	}

	movements, err := h.sessionService.ListMovements(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, toMovementResponses(movements), len(movements))
}
