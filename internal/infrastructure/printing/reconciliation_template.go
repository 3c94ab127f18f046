package printing

// reconciliationTemplate is the HTML printed into the PDF report
const reconciliationTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #222; }
  h1 { font-size: 14pt; margin: 0 0 12px 0; }
  h2 { font-size: 12pt; margin: 18px 0 6px 0; }
  .meta p { margin: 2px 0; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #bbb; padding: 4px 6px; text-align: left; }
  th { background: #f0f0f0; }
  td.num { text-align: right; white-space: nowrap; }
  .totals td { width: 50%; }
  .neg { color: #b00020; }
  .note { color: #666; font-size: 9pt; margin-top: 10px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">
  <p>Fecha de reporte: {{formatDateTime .GeneratedAt}}</p>
  <p>Corte final ID: {{.FinalSessionID}}{{if .FinalCashierName}} ({{.FinalCashierName}}){{end}}</p>
  <p>Rango: {{formatDateTime .Floor}} a {{formatDateTime .Ceiling}}</p>
</div>

<h2>Totales</h2>
<table class="totals">
  <tr><td>Ventas en efectivo</td><td class="num">{{formatMoney .Totals.CashSales}}</td></tr>
  <tr><td>Ventas con tarjeta</td><td class="num">{{formatMoney .Totals.CardSales}}</td></tr>
  <tr><td>Total de ventas</td><td class="num">{{formatMoney .Totals.TotalSales}}</td></tr>
  <tr><td>Gastos</td><td class="num">{{formatMoney .Totals.Expenses}}</td></tr>
  <tr><td><strong>Neto</strong></td><td class="num{{if isNegative .Totals.Net}} neg{{end}}"><strong>{{formatMoney .Totals.Net}}</strong></td></tr>
</table>

<h2>Cortes por turno incluidos: {{len .Sessions}}</h2>
{{if .Sessions}}
<table>
  <tr>
    <th>ID corte</th><th>Cajero</th><th>Turno</th><th>Inicio</th><th>Fin</th>
    <th>Fondo inicial</th><th>Efectivo</th><th>Tarjeta</th><th>Gastos</th><th>Neto</th>
  </tr>
  {{range .Sessions}}
  <tr>
    <td>{{shortUUID .ID}}</td>
    <td>{{default "-" .CashierName}}</td>
    <td>{{default "-" .ShiftLabel}}</td>
    <td>{{formatDateTime .OpenedAt}}</td>
    <td>{{formatDateTime .ClosedAt}}</td>
    <td class="num">{{formatMoney .StartingFloat}}</td>
    <td class="num">{{formatMoney .Totals.CashSales}}</td>
    <td class="num">{{formatMoney .Totals.CardSales}}</td>
    <td class="num">{{formatMoney .Totals.Expenses}}</td>
    <td class="num">{{formatMoney .Totals.Net}}</td>
  </tr>
  {{end}}
</table>
{{else}}
<p>No hubo cortes por turno en el rango.</p>
{{end}}

{{if .IncludesFinalMovements}}<p class="note">Los totales incluyen los movimientos registrados en el corte final.</p>{{end}}
</body>
</html>
`

const reconciliationFooter = `<div style="font-size:8pt;width:100%;text-align:center;color:#666;">
Página <span class="pageNumber"></span> de <span class="totalPages"></span></div>`
