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

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/catalog"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/markdown"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/whatsapp"
)

// IST is the zone admins enter popup dates in.
var IST = models.IST

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	tc := &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: make(template.FuncMap),
	}
	tc.funcs["price"] = catalog.FormatINR
	tc.funcs["discount"] = catalog.Discount
	tc.funcs["categoryIcon"] = catalog.CategoryIcon
	tc.funcs["markdown"] = markdown.MustRender
	tc.funcs["waLink"] = whatsapp.Link
	tc.funcs["join"] = func(list []string, sep string) string { return strings.Join(list, sep) }
	tc.funcs["date"] = func(v any) string { return formatTime(v, "2 Jan 2006") }
	tc.funcs["dateTime"] = func(v any) string { return formatTime(v, "2 Jan 2006 15:04") }
	tc.funcs["inputTime"] = func(v any) string { return formatTime(v, "2006-01-02T15:04") }
	return tc
}

// Load parses every page in dir together with the layouts in dir/layouts.
func (tc *TemplateCache) Load(fsys fs.FS, dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	layouts := path.Join(dir, "layouts", "*.html")

	for _, file := range files {
		name := path.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, layouts, file)
		if err != nil {
			slog.Error("Failed to parse template", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// Render executes the named page into a buffer first so a failing template
// produces a clean 500 instead of half a page.
func (tc *TemplateCache) Render(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	tmpl := tc.Get(name)
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Failed to render template", "name", name, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func formatTime(v any, layout string) string {
	var t time.Time
	switch tv := v.(type) {
	case time.Time:
		t = tv
	case *time.Time:
		if tv == nil {
			return ""
		}
		t = *tv
	default:
		return fmt.Sprint(v)
	}
	if t.IsZero() {
		return ""
	}
	return t.In(IST).Format(layout)
}
