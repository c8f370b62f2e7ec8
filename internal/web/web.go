// Package web holds the console's HTML templates.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/fetan/fetan_admin/internal/resource"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every page and partial.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Funcs are the helpers available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"display": resource.Display,
		"money":   resource.Money,
		"lookup": func(rec fetanapi.Record, path string) any {
			return resource.Lookup(rec, path)
		},
		"tone": func(v any) string {
			return resource.Tone(resource.Display(v))
		},
		"truthy": resource.Truthy,
		"date":   formatDate,
		"title":  titleCase,
		"now":    time.Now,
	}
}

func formatDate(v any) string {
	t, ok := resource.ParseTime(v)
	if !ok {
		return resource.Display(v)
	}
	return t.Format("Jan 2, 2006")
}

// titleCase turns "mobile_money" into "Mobile Money".
func titleCase(v any) string {
	words := strings.Fields(strings.ReplaceAll(resource.Display(v), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
