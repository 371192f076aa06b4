package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/taskflow/internal/domain"
	"github.com/sethvargo/go-retry"
)

// DefaultAPIURL is the public GitHub REST endpoint.
const DefaultAPIURL = "https://api.github.com"

const (
	userAgent     = "TaskFlow-GitHub-Integration"
	acceptHeader  = "application/vnd.github.v3+json"
	maxErrorBody  = 1 << 10
	defaultRetry  = 2
	defaultBase   = 200 * time.Millisecond
	clientTimeout = 30 * time.Second
)

// User is the authenticated GitHub account.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Client calls the GitHub REST API on behalf of a user token.
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries uint64
	retryBase  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets how many times a transient failure is retried and the
// initial backoff between attempts.
func WithRetry(maxRetries uint64, base time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBase = base
	}
}

// NewClient creates a client for apiURL. An empty apiURL uses DefaultAPIURL.
func NewClient(apiURL string, logger *slog.Logger, opts ...ClientOption) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: clientTimeout},
		logger:     logger.With(slog.String("component", "github_client")),
		maxRetries: defaultRetry,
		retryBase:  defaultBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// issueResponse is the subset of the issues endpoint TaskFlow reads.
// Pull requests are returned by the same endpoint with pull_request set.
type issueResponse struct {
	ID        int64           `json:"id"`
	Number    int             `json:"number"`
	Title     string          `json:"title"`
	Body      *string         `json:"body"`
	State     string          `json:"state"`
	HTMLURL   string          `json:"html_url"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	PullReq   json.RawMessage `json:"pull_request,omitempty"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []domain.GitHubLabel `json:"labels"`
}

// FetchItem returns the issue or pull request number in owner/repo.
func (c *Client) FetchItem(ctx context.Context, owner, repo string, number int, token string) (*domain.GitHubItem, error) {
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number)

	var resp issueResponse
	if err := c.get(ctx, path, token, &resp); err != nil {
		return nil, err
	}

	item := &domain.GitHubItem{
		ID:        resp.ID,
		Number:    resp.Number,
		Title:     resp.Title,
		Body:      resp.Body,
		State:     resp.State,
		HTMLURL:   resp.HTMLURL,
		Type:      domain.GitHubItemIssue,
		Author:    resp.User.Login,
		Labels:    resp.Labels,
		CreatedAt: resp.CreatedAt,
		UpdatedAt: resp.UpdatedAt,
	}
	if len(resp.PullReq) > 0 && string(resp.PullReq) != "null" {
		item.Type = domain.GitHubItemPullRequest
	}
	return item, nil
}

// FetchUser returns the account that owns token.
func (c *Client) FetchUser(ctx context.Context, token string) (*User, error) {
	var u User
	if err := c.get(ctx, "/user", token, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// get performs a GET with retries and decodes a 200 response into out.
func (c *Client) get(ctx context.Context, path, token string, out any) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	attempt := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.doGet(ctx, path, token, out)

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= http.StatusInternalServerError {
			c.logger.WarnContext(ctx, "github request failed, retrying",
				slog.String("path", path),
				slog.Int("status", apiErr.StatusCode),
				slog.Int("attempt", attempt))
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) doGet(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return retry.RetryableError(fmt.Errorf("requesting %s: %w", path, err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrItemNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
