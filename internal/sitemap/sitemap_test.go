package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/junkyard/internal/models"
)

// mockGitHub implements git.GitHubClient for testing.
type mockGitHub struct {
	dates map[string]time.Time
	errs  map[string]error
	delay time.Duration
	calls atomic.Int32
}

func (m *mockGitHub) LastCommitDate(_ context.Context, repo string) (time.Time, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if err, ok := m.errs[repo]; ok {
		return time.Time{}, err
	}
	return m.dates[repo], nil
}

func (m *mockGitHub) Readme(context.Context, string) (string, error) { return "", nil }

var fixedNow = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

func TestBuild_SingleProject(t *testing.T) {
	gh := &mockGitHub{dates: map[string]time.Time{
		"alpha": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	projects := []models.Project{{Name: "alpha", Description: "d1"}}

	set := Build(context.Background(), "https://example.com/", projects, gh, nowFunc)

	require.Len(t, set.URLs, 2)
	assert.Equal(t, "https://example.com/", set.URLs[0].Loc)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
	assert.Equal(t, "2030-01-02T03:04:05Z", set.URLs[0].LastMod)

	assert.Equal(t, "https://example.com/projects/alpha", set.URLs[1].Loc)
	assert.Equal(t, "2024-01-01T00:00:00Z", set.URLs[1].LastMod)
	assert.Equal(t, "0.9", set.URLs[1].Priority)
	assert.Equal(t, "weekly", set.URLs[1].ChangeFreq)
}

func TestBuild_PreservesOrderAndIsolatesFailures(t *testing.T) {
	gh := &mockGitHub{
		dates: map[string]time.Time{
			"a": time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			"c": time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		errs:  map[string]error{"b": errors.New("rate limited")},
		delay: 10 * time.Millisecond,
	}
	projects := []models.Project{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	set := Build(context.Background(), "http://localhost:3000", projects, gh, nowFunc)

	require.Len(t, set.URLs, 4)
	assert.Equal(t, int32(3), gh.calls.Load())
	assert.Equal(t, "http://localhost:3000/projects/a", set.URLs[1].Loc)
	assert.Equal(t, "2021-01-01T00:00:00Z", set.URLs[1].LastMod)
	assert.Equal(t, "http://localhost:3000/projects/b", set.URLs[2].Loc)
	assert.Equal(t, "2030-01-02T03:04:05Z", set.URLs[2].LastMod)
	assert.Equal(t, "http://localhost:3000/projects/c", set.URLs[3].Loc)
	assert.Equal(t, "2023-03-03T00:00:00Z", set.URLs[3].LastMod)
	for _, e := range set.URLs[1:] {
		assert.Equal(t, "0.9", e.Priority)
	}
}

func TestBuild_EscapesProjectNames(t *testing.T) {
	gh := &mockGitHub{}
	projects := []models.Project{{Name: "my project/x"}}

	set := Build(context.Background(), "https://example.com", projects, gh, nowFunc)

	require.Len(t, set.URLs, 2)
	assert.Equal(t, "https://example.com/projects/my%20project%2Fx", set.URLs[1].Loc)
}

func TestBuild_NoProjects(t *testing.T) {
	set := Build(context.Background(), "https://example.com", nil, &mockGitHub{}, nowFunc)
	require.Len(t, set.URLs, 1)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
}

func TestEncode(t *testing.T) {
	gh := &mockGitHub{dates: map[string]time.Time{"alpha": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
	set := Build(context.Background(), "https://example.com", []models.Project{{Name: "alpha"}}, gh, nowFunc)

	var buf bytes.Buffer
	require.NoError(t, set.Encode(&buf))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, out, "<loc>https://example.com/projects/alpha</loc>")
	assert.Contains(t, out, "<lastmod>2024-01-01T00:00:00Z</lastmod>")
	assert.Contains(t, out, "<changefreq>weekly</changefreq>")

	var decoded URLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.URLs, 2)
}

// barrierGitHub answers only once every expected lookup is in flight, and
// fails the lookup if that never happens.
type barrierGitHub struct {
	want     int32
	inFlight atomic.Int32
	ready    chan struct{}
	date     time.Time
}

func (b *barrierGitHub) LastCommitDate(ctx context.Context, _ string) (time.Time, error) {
	if b.inFlight.Add(1) == b.want {
		close(b.ready)
	}
	select {
	case <-b.ready:
		return b.date, nil
	case <-time.After(5 * time.Second):
		return time.Time{}, errors.New("lookups did not overlap")
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	}
}

func (b *barrierGitHub) Readme(context.Context, string) (string, error) { return "", nil }

func TestBuild_AllLookupsInFlightTogether(t *testing.T) {
	const n = 20
	committed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	gh := &barrierGitHub{want: n, ready: make(chan struct{}), date: committed}

	projects := make([]models.Project, n)
	for i := range projects {
		projects[i] = models.Project{Name: fmt.Sprintf("p%02d", i)}
	}

	start := time.Now()
	set := Build(context.Background(), "https://example.com", projects, gh, nowFunc)

	assert.Less(t, time.Since(start), 5*time.Second)
	require.Len(t, set.URLs, n+1)
	for i, u := range set.URLs[1:] {
		assert.Equal(t, fmt.Sprintf("https://example.com/projects/p%02d", i), u.Loc)
		assert.Equal(t, "2024-06-01T00:00:00Z", u.LastMod)
	}
}
