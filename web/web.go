// Package web embeds the HTML templates and static assets of the site.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page template with the shared layout partials.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at the static directory.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date":  formatDate,
		"price": formatPrice,
		"year":  func() int { return time.Now().Year() },
	}
}

func formatDate(value interface{}) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return "—"
		}
		return v.Format("02.01.2006")
	case *time.Time:
		if v == nil || v.IsZero() {
			return "—"
		}
		return v.Format("02.01.2006")
	default:
		return ""
	}
}

func formatPrice(value float64) string {
	if value == 0 {
		return "Бесплатно"
	}
	return fmt.Sprintf("%.2f ₽", value)
}
