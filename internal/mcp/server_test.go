package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/junkyard/internal/models"
	"github.com/joescharf/junkyard/internal/store"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

// mockStore implements store.Store for testing.
type mockStore struct {
	projects []models.Project
	listErr  error
}

func (m *mockStore) ListProjects(context.Context) ([]models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.projects, nil
}

func (m *mockStore) GetProjectByName(_ context.Context, name string) (*models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	for i := range m.projects {
		if m.projects[i].Name == name {
			return &m.projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
}

// mockGHClient implements git.GitHubClient for testing.
type mockGHClient struct {
	readmes   map[string]string
	dates     map[string]time.Time
	readmeErr error
	commitErr error
}

func (m *mockGHClient) LastCommitDate(_ context.Context, repo string) (time.Time, error) {
	if m.commitErr != nil {
		return time.Time{}, m.commitErr
	}
	return m.dates[repo], nil
}

func (m *mockGHClient) Readme(_ context.Context, repo string) (string, error) {
	if m.readmeErr != nil {
		return "", m.readmeErr
	}
	return m.readmes[repo], nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var fixedNow = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Server, *mockStore, *mockGHClient) {
	t.Helper()
	ms := &mockStore{}
	ghc := &mockGHClient{readmes: map[string]string{}, dates: map[string]time.Time{}}

	srv := NewServer(ms, ghc, "test")
	srv.now = func() time.Time { return fixedNow }
	require.NotNil(t, srv)
	return srv, ms, ghc
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewServer(t *testing.T) {
	srv, _, _ := newTestServer(t)
	require.NotNil(t, srv.MCPServer())
}

func TestHandleListProjects(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	ms.projects = []models.Project{{Name: "alpha", Description: "d1"}, {Name: "beta", Description: "d2"}}

	result, err := srv.handleListProjects(context.Background(), callToolReq("junkyard_list_projects", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out []models.Project
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, ms.projects, out)
}

func TestHandleListProjects_StoreError(t *testing.T) {
	srv, ms, _ := newTestServer(t)
	ms.listErr = errors.New("disk on fire")

	result, err := srv.handleListProjects(context.Background(), callToolReq("junkyard_list_projects", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "disk on fire")
}

func TestHandleProjectReadme(t *testing.T) {
	srv, ms, ghc := newTestServer(t)
	ms.projects = []models.Project{{Name: "alpha"}}
	ghc.readmes["alpha"] = "# Alpha"
	ctx := context.Background()

	result, err := srv.handleProjectReadme(ctx, callToolReq("junkyard_project_readme", map[string]any{"project": "alpha"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "# Alpha", resultText(t, result))

	result, err = srv.handleProjectReadme(ctx, callToolReq("junkyard_project_readme", map[string]any{"project": "alpha", "format": "html"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `<h1 id="alpha">Alpha</h1>`)
}

func TestHandleProjectReadme_Errors(t *testing.T) {
	srv, ms, ghc := newTestServer(t)
	ms.projects = []models.Project{{Name: "alpha"}}
	ctx := context.Background()

	result, err := srv.handleProjectReadme(ctx, callToolReq("junkyard_project_readme", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "project is required")

	result, err = srv.handleProjectReadme(ctx, callToolReq("junkyard_project_readme", map[string]any{"project": "gamma"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "project not found")

	result, err = srv.handleProjectReadme(ctx, callToolReq("junkyard_project_readme", map[string]any{"project": "alpha", "format": "pdf"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	ghc.readmeErr = errors.New("fetch failed")
	result, err = srv.handleProjectReadme(ctx, callToolReq("junkyard_project_readme", map[string]any{"project": "alpha"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "failed to fetch readme")
}

func TestHandleLastCommit(t *testing.T) {
	srv, ms, ghc := newTestServer(t)
	ms.projects = []models.Project{{Name: "alpha"}}
	ghc.dates["alpha"] = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := srv.handleLastCommit(context.Background(), callToolReq("junkyard_last_commit", map[string]any{"project": "alpha"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "alpha", out["project"])
	assert.Equal(t, "2024-01-01T00:00:00Z", out["last_commit_date"])
	assert.Equal(t, false, out["fallback"])
}

func TestHandleLastCommit_Fallback(t *testing.T) {
	srv, ms, ghc := newTestServer(t)
	ms.projects = []models.Project{{Name: "alpha"}}
	ghc.commitErr = errors.New("rate limited")

	result, err := srv.handleLastCommit(context.Background(), callToolReq("junkyard_last_commit", map[string]any{"project": "alpha"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "2030-01-01T00:00:00Z", out["last_commit_date"])
	assert.Equal(t, true, out["fallback"])
	assert.Equal(t, "rate limited", out["error"])
}
