package models

import (
	"html/template"
	"time"
)

// Project is a single entry of the portfolio catalog. Name doubles as the
// GitHub repository name.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CommitInfo is the resolved last-commit date for a project. When the lookup
// failed, LastCommitDate holds the fallback time, Fallback is set and Err
// carries the cause.
type CommitInfo struct {
	ProjectName    string
	LastCommitDate time.Time
	Fallback       bool
	Err            error
}

// RenderedProject is a project plus its README rendered to HTML.
type RenderedProject struct {
	Title       string
	Description string
	HTML        template.HTML
}
