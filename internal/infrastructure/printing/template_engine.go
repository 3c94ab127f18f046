package printing

import (
	"bytes"
	"context"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is used for number formatting and casing
const DefaultLocale = "es-MX"

// TemplateEngine renders html/templates with locale-aware formatting
// helpers. Times are shown in the engine's location.
type TemplateEngine struct {
	funcMap  template.FuncMap
	printer  *message.Printer
	caser    cases.Caser
	location *time.Location
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLocale sets the BCP 47 locale, e.g. "es-MX" or "en-US"
func WithLocale(tag string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		lang, err := language.Parse(tag)
		if err != nil {
			lang = language.MustParse(DefaultLocale)
		}
		e.printer = message.NewPrinter(lang)
		e.caser = cases.Title(lang)
	}
}

// WithLocation sets the zone used by the date helpers
func WithLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewTemplateEngine creates a new template engine
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	lang := language.MustParse(DefaultLocale)
	e := &TemplateEngine{
		printer:  message.NewPrinter(lang),
		caser:    cases.Title(lang),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.funcMap = template.FuncMap{
		"formatMoney":    e.formatMoney,
		"formatNumber":   e.formatNumber,
		"formatDate":     e.formatDate,
		"formatDateTime": e.formatDateTime,
		"title":          e.caser.String,
		"upper":          strings.ToUpper,
		"shortUUID":      shortUUID,
		"default":        defaultString,
		"isNegative":     func(v any) bool { return toDecimal(v).IsNegative() },
	}
	return e
}

// RenderString parses content and executes it with data
func (e *TemplateEngine) RenderString(_ context.Context, name, content string, data any) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// Location returns the zone used by the date helpers
func (e *TemplateEngine) Location() *time.Location {
	return e.location
}

// formatMoney renders a currency amount with two decimals, e.g. "$1,234.50"
func (e *TemplateEngine) formatMoney(v any) string {
	d := toDecimal(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + e.printer.Sprintf("%.2f", d.InexactFloat64())
}

func (e *TemplateEngine) formatNumber(v any) string {
	return e.printer.Sprintf("%d", toDecimal(v).IntPart())
}

func (e *TemplateEngine) formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("2006-01-02")
}

func (e *TemplateEngine) formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("2006-01-02 15:04:05")
}

func shortUUID(id uuid.UUID) string {
	return id.String()[:8]
}

func defaultString(def, val string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return val
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	default:
		return time.Time{}
	}
}

