package web

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"date": formatDate,
}

func formatDate(createdAt int64) string {
	return time.UnixMilli(createdAt).Format("Jan 2, 2006")
}

// pages holds one template set per page, each combined with the layout
type pages map[string]*template.Template

func loadPages() (pages, error) {
	p := pages{}
	for _, name := range []string{"catalog", "watch", "notfound", "login", "admin"} {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, err
		}
		p[name] = t
	}
	return p, nil
}

func (p pages) render(w io.Writer, name string, data any) error {
	return p[name].ExecuteTemplate(w, "layout", data)
}

// trustedImageURL lets stored image data URLs through html/template URL
// filtering. Anything else is passed as a plain, filtered string.
func trustedImageURL(u string) template.URL {
	if strings.HasPrefix(u, "data:image/") {
		return template.URL(u)
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "/") {
		return template.URL(u)
	}
	return ""
}
