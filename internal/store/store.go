package store

import (
	"context"
	"errors"

	"github.com/joescharf/junkyard/internal/models"
	"github.com/joescharf/junkyard/internal/output"
)

// ErrNotFound is returned when no project matches a lookup.
var ErrNotFound = errors.New("project not found")

// Store defines the read-only catalog interface for junkyard.
type Store interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProjectByName(ctx context.Context, name string) (*models.Project, error)
}

// ListOrEmpty lists projects, logging and swallowing any error so callers
// render an empty catalog instead of failing the request.
func ListOrEmpty(ctx context.Context, s Store) []models.Project {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		output.Logger(ctx).Warn("failed to load projects", "error", err)
		return []models.Project{}
	}
	return projects
}
