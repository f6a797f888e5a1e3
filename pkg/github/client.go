// Package github provides GitHub API client functionality.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const defaultAPIBase = "https://api.github.com"

// Client handles all GitHub API interactions.
type Client struct {
	tokenExpiry        time.Time
	httpClient         *http.Client
	prxClient          PrxClient
	installationTokens map[string]string
	installationExpiry map[string]time.Time
	installationIDs    map[string]int
	appID              string
	token              string
	privateKeyPath     string
	currentOrg         string
	apiBase            string
	privateKeyContent  []byte
	tokenMutex         sync.RWMutex
	isAppAuth          bool
}

// Config holds configuration for creating a new GitHub client.
type Config struct {
	AppID       string
	AppKeyPath  string
	Token       string // Personal access token (for non-app auth)
	BaseURL     string // API base URL override, for tests (empty = api.github.com)
	HTTPTimeout time.Duration
	UseAppAuth  bool
}

// New creates a new GitHub API client using a personal access token or GitHub
// App authentication.
func New(ctx context.Context, cfg Config) (*Client, error) {
	var c *Client
	var err error
	if cfg.UseAppAuth {
		c, err = newAppAuthClient(ctx, cfg)
	} else {
		c, err = newPersonalTokenClient(cfg)
	}
	if err != nil {
		return nil, err
	}

	c.apiBase = cfg.BaseURL
	if c.apiBase == "" {
		c.apiBase = defaultAPIBase
	}
	return c, nil
}

// SetPrxClient wires a prx client for enriched PR data fetching. Called once
// at startup, before any requests are issued.
func (c *Client) SetPrxClient(prxClient PrxClient) {
	c.prxClient = prxClient
}

// EnrichedPullRequest returns supplemental PR data from the prx service as of
// the given reference time. Errors when no prx client is wired.
func (c *Client) EnrichedPullRequest(ctx context.Context, owner, repo string, prNumber int, referenceTime time.Time) (any, error) {
	if c.prxClient == nil {
		return nil, errors.New("no prx client configured")
	}
	return c.prxClient.PullRequestWithReferenceTime(ctx, owner, repo, prNumber, referenceTime)
}

// SetCurrentOrg sets the organization whose installation token authenticates
// subsequent requests (App auth only).
func (c *Client) SetCurrentOrg(org string) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	c.currentOrg = org
}

// Token returns the current GitHub token for external use (e.g., sprinkler).
// For App authentication with a currentOrg set, returns the installation
// token. Otherwise returns the base token (JWT or personal access token).
func (c *Client) Token(ctx context.Context) (string, error) {
	c.tokenMutex.RLock()
	org := c.currentOrg
	c.tokenMutex.RUnlock()
	if c.isAppAuth && org != "" {
		return c.installationToken(ctx, org)
	}
	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()
	return c.token, nil
}

// drainAndCloseBody drains and closes an HTTP response body to prevent resource leaks.
func drainAndCloseBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		slog.Warn("Failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		slog.Warn("Failed to close response body", "error", err)
	}
}

// doRequest makes an HTTP request to the GitHub API. Requests are not retried:
// a transient failure surfaces to the caller and fails the run rather than
// leaving review state half-applied.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body any) (*http.Response, error) {
	if c.isAppAuth {
		if err := c.refreshJWTIfNeeded(); err != nil {
			return nil, fmt.Errorf("failed to refresh JWT: %w", err)
		}
	}

	slog.Info("HTTP request", "component", "http", "method", method, "url", apiURL)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	authToken, err := c.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve auth token: %w", err)
	}

	if c.isAppAuth {
		req.Header.Set("Authorization", "Bearer "+authToken)
	} else {
		req.Header.Set("Authorization", "token "+authToken)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if method == http.MethodPatch || method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	slog.Info("HTTP response", "component", "http", "method", method, "url", apiURL, "status", resp.StatusCode)
	return resp, nil
}
