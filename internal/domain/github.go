package domain

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GitHubItemType distinguishes issues from pull requests
type GitHubItemType string

// Possible GitHub item types
const (
	GitHubItemIssue       GitHubItemType = "issue"
	GitHubItemPullRequest GitHubItemType = "pull_request"
)

// GitHub item states as reported by the REST API
const (
	GitHubStateOpen   = "open"
	GitHubStateClosed = "closed"
)

// ErrInvalidGitHubURL is returned when a URL does not point at a GitHub
// issue or pull request.
var ErrInvalidGitHubURL = errors.New("invalid GitHub URL")

// githubURLPattern matches https://github.com/{owner}/{repo}/(issues|pull)/{n}
// with an optional trailing path, query, or fragment.
var githubURLPattern = regexp.MustCompile(
	`^https://github\.com/([^/]+)/([^/]+)/(issues|pull)/(\d+)(?:[/?#].*)?$`,
)

// GitHubURL is the parsed form of a GitHub issue or pull request URL.
type GitHubURL struct {
	Owner  string         `json:"owner"`
	Repo   string         `json:"repo"`
	Number int            `json:"number"`
	Type   GitHubItemType `json:"type"`
}

// ParseGitHubURL parses raw into its owner, repo, number and item type.
func ParseGitHubURL(raw string) (GitHubURL, error) {
	m := githubURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return GitHubURL{}, ErrInvalidGitHubURL
	}

	n, err := strconv.Atoi(m[4])
	if err != nil || n <= 0 {
		return GitHubURL{}, ErrInvalidGitHubURL
	}

	itemType := GitHubItemIssue
	if m[3] == "pull" {
		itemType = GitHubItemPullRequest
	}

	return GitHubURL{Owner: m[1], Repo: m[2], Number: n, Type: itemType}, nil
}

// GitHubIntegration holds a user's GitHub OAuth credentials.
type GitHubIntegration struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	GitHubID       string     `json:"github_id"`
	GitHubUsername string     `json:"github_username"`
	AccessToken    string     `json:"-"`
	RefreshToken   *string    `json:"-"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// GitHubLink ties a task to a GitHub issue or pull request.
type GitHubLink struct {
	ID           uuid.UUID      `json:"id"`
	TaskID       uuid.UUID      `json:"task_id"`
	GitHubURL    string         `json:"github_url"`
	GitHubOwner  string         `json:"github_owner"`
	GitHubRepo   string         `json:"github_repo"`
	GitHubNumber int            `json:"github_number"`
	GitHubType   GitHubItemType `json:"github_type"`
	IsAutoSync   bool           `json:"is_auto_sync"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewGitHubLink creates a link for taskID from a parsed URL.
func NewGitHubLink(taskID uuid.UUID, rawURL string, parsed GitHubURL) (*GitHubLink, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	now := time.Now().UTC()
	return &GitHubLink{
		ID:           uuid.New(),
		TaskID:       taskID,
		GitHubURL:    rawURL,
		GitHubOwner:  parsed.Owner,
		GitHubRepo:   parsed.Repo,
		GitHubNumber: parsed.Number,
		GitHubType:   parsed.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GitHubLabel is a label attached to a GitHub item.
type GitHubLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GitHubItem is the subset of an issue or pull request TaskFlow shows.
type GitHubItem struct {
	ID        int64          `json:"id"`
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Body      *string        `json:"body"`
	State     string         `json:"state"`
	HTMLURL   string         `json:"html_url"`
	Type      GitHubItemType `json:"type"`
	Author    string         `json:"author"`
	Labels    []GitHubLabel  `json:"labels,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TaskStatusToGitHubState maps a task status to the GitHub state it implies.
func TaskStatusToGitHubState(status TaskStatus) string {
	if status == TaskStatusDone {
		return GitHubStateClosed
	}
	return GitHubStateOpen
}

// GitHubStateToTaskStatus maps a GitHub item state to a task status.
func GitHubStateToTaskStatus(state string) TaskStatus {
	if state == GitHubStateClosed {
		return TaskStatusDone
	}
	return TaskStatusTodo
}
