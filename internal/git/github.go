package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"

	"github.com/joescharf/junkyard/internal/models"
	"github.com/joescharf/junkyard/internal/output"
)

// UserAgent identifies junkyard to GitHub.
const UserAgent = "junkyard-portfolio"

var (
	// ErrFetchFailed is returned when the README could not be fetched.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrNoCommits is returned when a repository has no commits.
	ErrNoCommits = errors.New("no commits found")
)

// GitHubClient fetches repository metadata for catalog projects.
type GitHubClient interface {
	LastCommitDate(ctx context.Context, repo string) (time.Time, error)
	Readme(ctx context.Context, repo string) (string, error)
}

// GitHubConfig holds the settings for HTTPGitHubClient.
type GitHubConfig struct {
	Owner   string
	Branch  string
	Token   string
	APIURL  string
	RawURL  string
	Timeout time.Duration
}

// HTTPGitHubClient implements GitHubClient. Commit lookups go through the
// GitHub REST API via go-github; READMEs come from raw.githubusercontent.com.
type HTTPGitHubClient struct {
	cfg  GitHubConfig
	http *http.Client
	api  *github.Client
}

// NewGitHubClient returns a new HTTPGitHubClient, filling in defaults for
// unset URLs and branch.
func NewGitHubClient(cfg GitHubConfig) (*HTTPGitHubClient, error) {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.github.com"
	}
	if cfg.RawURL == "" {
		cfg.RawURL = "https://raw.githubusercontent.com"
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.RawURL = strings.TrimRight(cfg.RawURL, "/")

	// go-github resolves request paths relative to BaseURL, which must end in a slash.
	baseURL, err := url.Parse(cfg.APIURL + "/")
	if err != nil {
		return nil, fmt.Errorf("github api url: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	api := github.NewClient(httpClient)
	if cfg.Token != "" {
		api = api.WithAuthToken(cfg.Token)
	}
	api.BaseURL = baseURL
	api.UserAgent = UserAgent

	return &HTTPGitHubClient{
		cfg:  cfg,
		http: httpClient,
		api:  api,
	}, nil
}

func (c *HTTPGitHubClient) LastCommitDate(ctx context.Context, repo string) (time.Time, error) {
	// go-github formats owner and repo into the path verbatim.
	owner, name := url.PathEscape(c.cfg.Owner), url.PathEscape(repo)
	commits, _, err := c.api.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("commits %s: %w", repo, err)
	}
	if len(commits) == 0 {
		return time.Time{}, fmt.Errorf("commits %s: %w", repo, ErrNoCommits)
	}

	date := commits[0].GetCommit().GetAuthor().GetDate()
	if date.IsZero() {
		return time.Time{}, fmt.Errorf("commits %s: latest commit has no author date", repo)
	}
	return date.Time, nil
}

func (c *HTTPGitHubClient) Readme(ctx context.Context, repo string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/%s/README.md",
		c.cfg.RawURL, url.PathEscape(c.cfg.Owner), url.PathEscape(repo), c.cfg.Branch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build readme request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("readme %s: %w: %w", repo, ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("readme %s: %w: status %s", repo, ErrFetchFailed, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("readme %s: %w: %w", repo, ErrFetchFailed, err)
	}
	return string(body), nil
}

// ResolveCommitDate looks up the last commit date of repo and never fails:
// any error is logged and replaced by now().
func ResolveCommitDate(ctx context.Context, gh GitHubClient, repo string, now func() time.Time) models.CommitInfo {
	info := models.CommitInfo{ProjectName: repo}

	date, err := gh.LastCommitDate(ctx, repo)
	if err != nil {
		output.Logger(ctx).Warn("failed to fetch last commit date", "project", repo, "error", err)
		info.LastCommitDate = now()
		info.Fallback = true
		info.Err = err
		return info
	}

	info.LastCommitDate = date
	return info
}
