package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/junkyard/internal/git"
	"github.com/joescharf/junkyard/internal/markdown"
	"github.com/joescharf/junkyard/internal/store"
)

// Server exposes the portfolio catalog and its GitHub metadata as MCP tools.
type Server struct {
	store   store.Store
	gh      git.GitHubClient
	md      *markdown.Renderer
	version string
	now     func() time.Time
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store, ghc git.GitHubClient, version string) *Server {
	return &Server{
		store:   s,
		gh:      ghc,
		md:      markdown.NewRenderer(),
		version: version,
		now:     time.Now,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("junkyard", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listProjectsTool())
	srv.AddTool(s.projectReadmeTool())
	srv.AddTool(s.lastCommitTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// junkyard_list_projects
func (s *Server) listProjectsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("junkyard_list_projects",
		mcp.WithDescription("List all portfolio projects. Returns a JSON array of {name, description} in catalog order."),
	)
	return tool, s.handleListProjects
}

func (s *Server) handleListProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
	}

	data, err := json.Marshal(projects)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal projects: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// junkyard_project_readme
func (s *Server) projectReadmeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("junkyard_project_readme",
		mcp.WithDescription("Fetch a project's README from GitHub. Returns markdown by default, or rendered HTML with format=html."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
		mcp.WithString("format", mcp.Description(`"markdown" (default) or "html"`)),
	)
	return tool, s.handleProjectReadme
}

func (s *Server) handleProjectReadme(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("project", "")
	if name == "" {
		return mcp.NewToolResultError("project is required"), nil
	}
	format := request.GetString("format", "markdown")
	if format != "markdown" && format != "html" {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
	}

	p, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", name)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load projects: %v", err)), nil
	}

	readme, err := s.gh.Readme(ctx, p.Name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch readme: %v", err)), nil
	}
	if format == "markdown" {
		return mcp.NewToolResultText(readme), nil
	}

	html, err := s.md.Render([]byte(readme))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render readme: %v", err)), nil
	}
	return mcp.NewToolResultText(string(html)), nil
}

// junkyard_last_commit
func (s *Server) lastCommitTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("junkyard_last_commit",
		mcp.WithDescription("Get the last commit date of a project. Falls back to the current time when GitHub cannot be reached; the fallback flag reports this."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name")),
	)
	return tool, s.handleLastCommit
}

func (s *Server) handleLastCommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("project", "")
	if name == "" {
		return mcp.NewToolResultError("project is required"), nil
	}

	p, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", name)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to load projects: %v", err)), nil
	}

	info := git.ResolveCommitDate(ctx, s.gh, p.Name, s.now)

	out := struct {
		Project        string `json:"project"`
		LastCommitDate string `json:"last_commit_date"`
		Fallback       bool   `json:"fallback"`
		Error          string `json:"error,omitempty"`
	}{
		Project:        info.ProjectName,
		LastCommitDate: info.LastCommitDate.UTC().Format(time.RFC3339),
		Fallback:       info.Fallback,
	}
	if info.Err != nil {
		out.Error = info.Err.Error()
	}

	data, err := json.Marshal(out)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
