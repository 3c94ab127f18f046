package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/cortecaja/backend/internal/domain/cashdrawer"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExcelSheetName is the single worksheet of the XLSX report
const ExcelSheetName = "Reporte Final"

const (
	excelTimeLayout = "2006-01-02 15:04:05"
	excelMoneyFmt   = "#,##0.00"
	// first row of the per-session table
	excelSessionHeaderRow = 12
)

var excelSessionHeaders = []string{
	"ID corte", "Usuario ID", "Fecha inicio", "Fecha fin", "Turno",
	"Cajero", "Fondo inicial", "Efectivo", "Tarjeta", "Gastos", "Neto",
}

// ExcelWorkbookRenderer produces the XLSX reconciliation report
type ExcelWorkbookRenderer struct {
	location *time.Location
}

// NewExcelWorkbookRenderer creates the renderer; times are written in loc
func NewExcelWorkbookRenderer(loc *time.Location) *ExcelWorkbookRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &ExcelWorkbookRenderer{location: loc}
}

// Format returns xlsx
func (r *ExcelWorkbookRenderer) Format() cashdrawer.DocumentFormat {
	return cashdrawer.DocumentFormatXLSX
}

// Render builds the workbook in memory
func (r *ExcelWorkbookRenderer) Render(ctx context.Context, payload *cashdrawer.ReconciliationPayload) ([]byte, error) {
	view, err := newReportView(payload)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "workbook rendering was cancelled", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ExcelSheetName); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "rename sheet", err)
	}

	w := &sheetWriter{f: f, sheet: ExcelSheetName}
	if err := w.init(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "create styles", err)
	}

	r.writeHeader(w, view)
	r.writeTotals(w, view)
	r.writeSessions(w, view)
	if w.err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "write cells", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "write workbook", err)
	}
	return buf.Bytes(), nil
}

func (r *ExcelWorkbookRenderer) writeHeader(w *sheetWriter, view *reportView) {
	w.set("A1", view.Title)
	w.style("A1", "A1", w.titleStyle)
	w.set("A2", "Fecha de reporte: "+r.formatTime(view.GeneratedAt))
	w.set("A3", fmt.Sprintf("Corte final ID: %s", view.FinalSessionID))
	w.set("A4", fmt.Sprintf("Rango: %s a %s", r.formatTime(view.Floor), r.formatTime(view.Ceiling)))
}

func (r *ExcelWorkbookRenderer) writeTotals(w *sheetWriter, view *reportView) {
	rows := []struct {
		label string
		value decimal.Decimal
	}{
		{"Ventas efectivo", view.Totals.CashSales},
		{"Ventas tarjeta", view.Totals.CardSales},
		{"Gastos", view.Totals.Expenses},
		{"Neto", view.Totals.Net},
		{"Total ventas", view.Totals.TotalSales},
	}
	for i, row := range rows {
		n := 6 + i
		w.set(fmt.Sprintf("A%d", n), row.label)
		w.set(fmt.Sprintf("B%d", n), row.value.InexactFloat64())
	}
	w.style("B6", "B10", w.moneyStyle)
	w.style("A9", "B9", w.boldMoneyStyle)
}

func (r *ExcelWorkbookRenderer) writeSessions(w *sheetWriter, view *reportView) {
	w.set("A11", "Cortes por turno incluidos")
	w.set("B11", len(view.Sessions))
	w.style("A11", "A11", w.boldStyle)

	for i, h := range excelSessionHeaders {
		w.set(w.cell(i+1, excelSessionHeaderRow), h)
	}
	w.style("A12", w.cell(len(excelSessionHeaders), excelSessionHeaderRow), w.boldStyle)

	row := excelSessionHeaderRow + 1
	for _, s := range view.Sessions {
		closedAt := ""
		if s.ClosedAt != nil {
			closedAt = r.formatTime(*s.ClosedAt)
		}
		values := []any{
			s.ID.String(),
			s.CashierID.String(),
			r.formatTime(s.OpenedAt),
			closedAt,
			s.ShiftLabel,
			s.CashierName,
			s.StartingFloat.InexactFloat64(),
			s.Totals.CashSales.InexactFloat64(),
			s.Totals.CardSales.InexactFloat64(),
			s.Totals.Expenses.InexactFloat64(),
			s.Totals.Net.InexactFloat64(),
		}
		for col, v := range values {
			w.set(w.cell(col+1, row), v)
		}
		row++
	}
	if len(view.Sessions) > 0 {
		w.style(w.cell(7, excelSessionHeaderRow+1), w.cell(11, row-1), w.moneyStyle)
	}

	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, "A", "B", 38)
	}
	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, "C", "K", 20)
	}
}

func (r *ExcelWorkbookRenderer) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.location).Format(excelTimeLayout)
}

// sheetWriter keeps the first error so cell writes can be chained
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error

	titleStyle     int
	boldStyle      int
	moneyStyle     int
	boldMoneyStyle int
}

func (w *sheetWriter) init() error {
	money := excelMoneyFmt
	var err error
	if w.titleStyle, err = w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return err
	}
	if w.boldStyle, err = w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return err
	}
	if w.moneyStyle, err = w.f.NewStyle(&excelize.Style{CustomNumFmt: &money}); err != nil {
		return err
	}
	w.boldMoneyStyle, err = w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &money})
	return err
}

func (w *sheetWriter) set(cell string, value any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, value)
}

func (w *sheetWriter) style(from, to string, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, style)
}

func (w *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}
