package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/joescharf/junkyard/internal/git"
	"github.com/joescharf/junkyard/internal/models"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

const (
	rootPriority    = 1.0
	projectPriority = 0.9
	changeFreq      = "weekly"
)

// URLSet is the root element of a sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// Entry is a single <url> in the sitemap.
type Entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func newEntry(loc string, lastMod time.Time, priority float64) Entry {
	return Entry{
		Loc:        loc,
		LastMod:    lastMod.UTC().Format(time.RFC3339),
		ChangeFreq: changeFreq,
		Priority:   fmt.Sprintf("%.1f", priority),
	}
}

// Build resolves the last commit date of every project concurrently and
// assembles the sitemap: the site root first, then one entry per project in
// catalog order. Lookup failures fall back to now and never abort the batch.
func Build(ctx context.Context, baseURL string, projects []models.Project, gh git.GitHubClient, now func() time.Time) *URLSet {
	base := strings.TrimRight(baseURL, "/")

	// One goroutine per project; the package-level iter.Map caps at GOMAXPROCS.
	mapper := iter.Mapper[models.Project, models.CommitInfo]{MaxGoroutines: len(projects)}
	commits := mapper.Map(projects, func(p *models.Project) models.CommitInfo {
		return git.ResolveCommitDate(ctx, gh, p.Name, now)
	})

	set := &URLSet{
		XMLNS: Namespace,
		URLs:  make([]Entry, 0, len(projects)+1),
	}
	set.URLs = append(set.URLs, newEntry(base+"/", now(), rootPriority))
	for i, p := range projects {
		loc := base + "/projects/" + url.PathEscape(p.Name)
		set.URLs = append(set.URLs, newEntry(loc, commits[i].LastCommitDate, projectPriority))
	}
	return set
}

// Encode writes the sitemap as an XML document.
func (s *URLSet) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	return enc.Close()
}
