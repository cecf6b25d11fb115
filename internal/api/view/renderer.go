// Package view renders the server-side HTML pages. Every page template is
// parsed together with layout.html and executed through the "layout" entry.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages lists every renderable template name.
var Pages = []string{
	"index", "login", "register", "create", "create-part", "edit-part",
	"part", "my-items", "user-parts", "users", "hashtag", "error",
}

// Renderer implements echo.Renderer.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses all pages. It fails when any template is malformed.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// DetailRow is one name/value input pair in the part form.
type DetailRow struct {
	Name  string
	Value string
}

var funcs = template.FuncMap{
	"price": func(p float64) string { return fmt.Sprintf("%.2f", p) },
	// tagPath strips the leading '#' for use in /hashtag/:tag links.
	"tagPath": func(tag string) string { return strings.TrimPrefix(tag, "#") },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	// rows zips the submitted detail inputs without dropping anything so the
	// form can be redisplayed as entered. One empty row is always appended.
	"rows": func(names, values []string) []DetailRow {
		n := max(len(names), len(values))
		out := make([]DetailRow, 0, n+1)
		for i := 0; i < n; i++ {
			var row DetailRow
			if i < len(names) {
				row.Name = names[i]
			}
			if i < len(values) {
				row.Value = values[i]
			}
			out = append(out, row)
		}
		return append(out, DetailRow{})
	},
}
