package printing

import (
	"context"

	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/cortecaja/backend/internal/domain/cashdrawer"
)

var (
	_ appcash.DocumentRenderer = (*PDFDocumentRenderer)(nil)
	_ appcash.DocumentRenderer = (*ExcelWorkbookRenderer)(nil)
)

// PDFDocumentRenderer produces the PDF reconciliation report: the payload is
// laid out with reconciliationTemplate and printed by a PDFRenderer.
type PDFDocumentRenderer struct {
	engine *TemplateEngine
	pdf    PDFRenderer
	paper  PaperSize
}

// NewPDFDocumentRenderer creates the PDF document renderer
func NewPDFDocumentRenderer(engine *TemplateEngine, pdf PDFRenderer) *PDFDocumentRenderer {
	if engine == nil {
		engine = NewTemplateEngine()
	}
	return &PDFDocumentRenderer{engine: engine, pdf: pdf, paper: PaperSizeLetter}
}

// Format returns pdf
func (r *PDFDocumentRenderer) Format() cashdrawer.DocumentFormat {
	return cashdrawer.DocumentFormatPDF
}

// RenderHTML returns the report markup without printing it
func (r *PDFDocumentRenderer) RenderHTML(ctx context.Context, payload *cashdrawer.ReconciliationPayload) (string, error) {
	view, err := newReportView(payload)
	if err != nil {
		return "", err
	}
	return r.engine.RenderString(ctx, "reconciliation", reconciliationTemplate, view)
}

// Render lays out and prints the report
func (r *PDFDocumentRenderer) Render(ctx context.Context, payload *cashdrawer.ReconciliationPayload) ([]byte, error) {
	html, err := r.RenderHTML(ctx, payload)
	if err != nil {
		return nil, err
	}

	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       html,
		PaperSize:  r.paper,
		Margins:    DefaultMargins(),
		Title:      ReportTitle,
		FooterHTML: reconciliationFooter,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}
