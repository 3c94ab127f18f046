// Package printing renders reconciliation reports into downloadable
// documents: PDF through headless Chrome and XLSX through excelize.
//
// The HTML for the PDF comes from an html/template with locale-aware
// formatting helpers; ChromedpRenderer then prints that HTML.
package printing
