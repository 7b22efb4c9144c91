package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/joescharf/junkyard/internal/models"
)

//go:embed all:public
var publicFS embed.FS

//go:embed templates/*.html
var templatesFS embed.FS

// PublicFS returns the embedded public/ filesystem with the prefix stripped.
func PublicFS() (fs.FS, error) {
	return fs.Sub(publicFS, "public")
}

// Handler returns an http.Handler serving static files. When dir is empty the
// embedded public/ tree is served, otherwise files come from dir on disk.
// Directory listings are never exposed and missing files return 404.
func Handler(dir string) (http.Handler, error) {
	var root fs.FS
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("public dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("public dir: %s is not a directory", dir)
		}
		root = os.DirFS(dir)
	} else {
		sub, err := PublicFS()
		if err != nil {
			return nil, err
		}
		root = sub
	}

	fileServer := http.FileServerFS(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if p == "" {
			http.NotFound(w, r)
			return
		}

		info, err := fs.Stat(root, p)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	}), nil
}

// Templates holds the parsed page templates. Each page is parsed together with
// the shared layout so pages can be executed by name.
type Templates struct {
	pages map[string]*template.Template
}

// PageData is the data passed to every page template.
type PageData struct {
	SiteTitle   string
	Title       string
	Description string
	Projects    []models.Project
	Project     *models.RenderedProject
}

// Page names.
const (
	PageHome    = "home.html"
	PageProject = "project.html"
)

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageHome, PageProject} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}
	return t, nil
}

// Render executes the named page into w.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown template: %s", page)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}
