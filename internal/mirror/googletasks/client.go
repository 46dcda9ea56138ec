// Package googletasks implements mirror.Remote using the Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"todoapp/internal/config"
	"todoapp/internal/mirror"
)

const (
	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements mirror.Remote using Google Tasks API.
type Client struct {
	svc *gtasks.Service
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Token source refreshes on demand
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	svc, err := gtasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// NewWithEndpoint creates a client against a custom endpoint (for testing).
func NewWithEndpoint(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	svc, err := gtasks.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(endpoint),
	)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// EnsureList implements mirror.Remote.
func (c *Client) EnsureList(ctx context.Context, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	want := strings.ToLower(strings.TrimSpace(title))

	var matches []string
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *gtasks.TaskLists) error {
		for _, list := range resp.Items {
			if strings.ToLower(strings.TrimSpace(list.Title)) == want {
				matches = append(matches, list.Id)
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	switch len(matches) {
	case 0:
		created, err := c.svc.Tasklists.Insert(&gtasks.TaskList{Title: strings.TrimSpace(title)}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		return created.Id, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous list name: %s", title)
	}
}

// ListTitles implements mirror.Remote.
func (c *Client) ListTitles(ctx context.Context, listID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var titles []string
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *gtasks.Tasks) error {
			for _, t := range resp.Items {
				titles = append(titles, t.Title)
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return titles, nil
}

// Insert implements mirror.Remote.
func (c *Client) Insert(ctx context.Context, listID string, t mirror.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	status := statusNeedsAction
	if t.Completed {
		status = statusCompleted
	}

	_, err := c.svc.Tasks.Insert(listID, &gtasks.Task{
		Title:  t.Title,
		Notes:  t.Notes,
		Status: status,
	}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: todoapp link)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return fmt.Errorf("not found")
	}

	return err
}
