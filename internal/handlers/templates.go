package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/Maheesh09/studio-full-stack/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: defaultFuncs(),
	}
}

// Load parses every page under public/ and admin/ together with the
// matching layout and the shared partials. Pages are cached as
// "public/home.html", "admin/orders.html" and so on.
func (tc *TemplateCache) Load(fsys fs.FS) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	for _, section := range []string{"public", "admin"} {
		pages, err := fs.Glob(fsys, section+"/*.html")
		if err != nil {
			return err
		}
		for _, page := range pages {
			name := path.Base(page)
			tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys,
				"layouts/"+section+".html",
				"layouts/partials.html",
				page,
			)
			if err != nil {
				slog.Error("Failed to parse template", "file", page, "error", err)
				return err
			}
			tc.cache[page] = tmpl
			slog.Debug("Cached template", "name", page)
		}
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render executes the page into a buffer first so a template error never
// leaves a half-written page behind.
func (tc *TemplateCache) Render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	tmpl := tc.Get(name)
	if tmpl == nil {
		slog.Error("Template not found", "name", name)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Failed to render template", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"formatMoney": formatMoney,
		"formatCount": func(val interface{}) string {
			return humanize.Comma(cast.ToInt64(val))
		},
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"timeAgo": func(t time.Time) string {
			return humanize.Time(t)
		},
		"dateInput": func(t models.LocalTime) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"timeInput": func(t models.LocalTime) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("15:04")
		},
		"label": func(s string) string {
			s = strings.ReplaceAll(s, "_", " ")
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
		"add": func(a, b int) int {
			return a + b
		},
		"bookingStatuses": func() []string { return models.BookingStatuses },
		"orderStatuses":   func() []string { return models.OrderStatuses },
		"paymentStatuses": func() []string { return models.PaymentStatuses },
		"availabilities":  func() []string { return models.Availabilities },
	}
}

// formatMoney renders an amount as "Rs. 1,234.50". Decimals are formatted
// from their exact value; anything else goes through cast.
func formatMoney(val interface{}) string {
	var d decimal.Decimal
	switch v := val.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v != nil {
			d = *v
		}
	default:
		d = decimal.NewFromFloat(cast.ToFloat64(val))
	}

	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("Rs. %s%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}

func toTime(val interface{}) time.Time {
	switch v := val.(type) {
	case models.LocalTime:
		return v.Time
	case *models.LocalTime:
		if v != nil {
			return v.Time
		}
	case time.Time:
		return v
	}
	return time.Time{}
}

func formatDate(val interface{}) string {
	t := toTime(val)
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02 Jan 2006")
}

func formatDateTime(val interface{}) string {
	t := toTime(val)
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02 Jan 2006 15:04")
}
