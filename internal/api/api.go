package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/joescharf/junkyard/internal/git"
	"github.com/joescharf/junkyard/internal/markdown"
	"github.com/joescharf/junkyard/internal/models"
	"github.com/joescharf/junkyard/internal/output"
	"github.com/joescharf/junkyard/internal/sitemap"
	"github.com/joescharf/junkyard/internal/store"
	"github.com/joescharf/junkyard/internal/ui"
)

// Site holds the site-wide metadata rendered on every page.
type Site struct {
	Title       string
	Description string
	// BaseURL is the absolute origin used in the sitemap. When empty it is
	// derived from the incoming request.
	BaseURL string
}

// Server provides the HTTP handlers.
type Server struct {
	store  store.Store
	gh     git.GitHubClient
	md     *markdown.Renderer
	tmpl   *ui.Templates
	static http.Handler
	site   Site

	// Log receives one access log line per request when set.
	Log *output.UI

	now func() time.Time
}

// NewServer creates a new HTTP server. static serves everything that no page
// route claims.
func NewServer(s store.Store, ghc git.GitHubClient, static http.Handler, site Site) (*Server, error) {
	tmpl, err := ui.LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		store:  s,
		gh:     ghc,
		md:     markdown.NewRenderer(),
		tmpl:   tmpl,
		static: static,
		site:   site,
		now:    time.Now,
	}, nil
}

// Router returns an http.Handler for all routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /projects/{id}", s.project)
	mux.HandleFunc("GET /sitemap.xml", s.sitemapXML)
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /", s.static)

	return requestIDMiddleware(accessLogMiddleware(s.Log, mux))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

// render executes a page into a buffer first so template failures still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data ui.PageData) {
	var buf bytes.Buffer
	if err := s.tmpl.Render(&buf, page, data); err != nil {
		output.Logger(r.Context()).Error("failed to render template", "page", page, "error", err)
		writeText(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	projects := store.ListOrEmpty(r.Context(), s.store)
	s.render(w, r, ui.PageHome, ui.PageData{
		SiteTitle:   s.site.Title,
		Title:       s.site.Title,
		Description: s.site.Description,
		Projects:    projects,
	})
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	found, err := s.store.GetProjectByName(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			output.Logger(ctx).Warn("failed to load projects", "error", err)
		}
		writeText(w, http.StatusNotFound, "Project not found")
		return
	}

	readme, err := s.gh.Readme(ctx, found.Name)
	if err != nil {
		output.Logger(ctx).Error("failed to fetch readme", "project", found.Name, "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to load project")
		return
	}

	html, err := s.md.Render([]byte(readme))
	if err != nil {
		output.Logger(ctx).Error("failed to render readme", "project", found.Name, "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to load project")
		return
	}

	s.render(w, r, ui.PageProject, ui.PageData{
		SiteTitle:   s.site.Title,
		Title:       found.Name,
		Description: found.Description,
		Project: &models.RenderedProject{
			Title:       found.Name,
			Description: found.Description,
			HTML:        template.HTML(html),
		},
	})
}

func (s *Server) sitemapXML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		output.Logger(ctx).Error("failed to generate sitemap", "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to generate sitemap")
		return
	}

	set := sitemap.Build(ctx, s.baseURL(r), projects, s.gh, s.now)

	var buf bytes.Buffer
	if err := set.Encode(&buf); err != nil {
		output.Logger(ctx).Error("failed to encode sitemap", "error", err)
		writeText(w, http.StatusInternalServerError, "Failed to generate sitemap")
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) baseURL(r *http.Request) string {
	if s.site.BaseURL != "" {
		return s.site.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
