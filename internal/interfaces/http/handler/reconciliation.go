package handler

import (
	"time"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateReconciliationRequest names the FINAL session to reconcile
type GenerateReconciliationRequest struct {
	FinalSessionID string `json:"final_session_id" binding:"required,uuid" example:"6f1c2a8e-4b5d-4e8f-9a21-3c7d0b9e1f42"`
}

// ReportResponse is a stored reconciliation with its document links
type ReportResponse struct {
	ID             uuid.UUID                      `json:"id"`
	FinalSessionID uuid.UUID                      `json:"final_session_id"`
	PDFURL         string                         `json:"pdf_url"`
	XLSXURL        string                         `json:"xlsx_url"`
	GeneratedAt    time.Time                      `json:"generated_at"`
	Range          cashdrawer.ReconciliationRange `json:"range"`
	Totals         cashdrawer.Totals              `json:"totals"`
	SessionCount   int                            `json:"session_count"`
}

func toReportResponse(r *cashdrawer.ReconciliationReport) ReportResponse {
	return ReportResponse{
		ID:             r.ID,
		FinalSessionID: r.FinalSessionID,
		PDFURL:         r.DocumentURL(cashdrawer.DocumentFormatPDF),
		XLSXURL:        r.DocumentURL(cashdrawer.DocumentFormatXLSX),
		GeneratedAt:    r.GeneratedAt,
		Range:          r.Range,
		Totals:         r.Totals,
		SessionCount:   r.SessionCount,
	}
}

// ReconciliationHandler serves reconciliation reports
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *appcash.ReconciliationService
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(reconciliationService *appcash.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationService: reconciliationService}
}

// Generate godoc
// @ID           generateReconciliation
// @Summary      Generate a reconciliation
// @Description  Aggregate the shifts closed out by a FINAL session, render the PDF and XLSX documents and store the report
// @Tags         reconciliations
// @Accept       json
// @Produce      json
// @Param        request body GenerateReconciliationRequest true "FINAL session"
// @Success      201 {object} APIResponse[ReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reconciliations [post]
func (h *ReconciliationHandler) Generate(c *gin.Context) {
	var req GenerateReconciliationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	// validated by the binding
	finalID := uuid.MustParse(req.FinalSessionID)

	result, err := h.reconciliationService.Generate(c.Request.Context(), finalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toReportResponse(result.Report))
}

// List godoc
// @ID           listReconciliations
// @Summary      List reconciliation reports
// @Tags         reconciliations
// @Produce      json
// @Success      200 {object} APIResponse[[]ReportResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reconciliations [get]
func (h *ReconciliationHandler) List(c *gin.Context) {
	reports, err := h.reconciliationService.ListReports(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]ReportResponse, len(reports))
	for i, r := range reports {
		out[i] = toReportResponse(r)
	}
	h.SuccessList(c, out, len(out))
}

// Get godoc
// @ID           getReconciliation
// @Summary      Get a reconciliation report
// @Tags         reconciliations
// @Produce      json
// @Param        id path string true "Report ID" format(uuid)
// @Success      200 {object} APIResponse[ReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /reconciliations/{id} [get]
func (h *ReconciliationHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "report")
	if !ok {
		return
	}
	report, err := h.reconciliationService.GetReport(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReportResponse(report))
}
