package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joescharf/junkyard/internal/models"
)

// FileStore implements Store on top of a JSON file. The file is read on
// every call, so edits show up without a restart.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore reading from path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the catalog file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read projects file: %w", err)
	}

	var projects []models.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parse projects file %s: %w", s.path, err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (s *FileStore) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}
