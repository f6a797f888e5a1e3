package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

const maxQuerySize = 100000

// MakeGraphQLRequest makes a GraphQL request to the GitHub API.
func (c *Client) MakeGraphQLRequest(ctx context.Context, query string, variables map[string]any) (map[string]any, error) {
	if len(query) > maxQuerySize {
		return nil, fmt.Errorf("GraphQL query too large: %d chars (max %d)", len(query), maxQuerySize)
	}

	slog.InfoContext(ctx, "Executing GraphQL query", "component", "api", "size", len(query))

	payload := map[string]any{
		"query":     query,
		"variables": variables,
	}
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/graphql", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL request: %w", err)
	}

	authToken, err := c.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request failed: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graphql request failed (status %d)", resp.StatusCode)
	}

	var result struct {
		Data   map[string]any `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode GraphQL response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", result.Errors[0].Message)
	}

	return result.Data, nil
}

// AuthenticatedUser returns the login of the identity the client acts as.
// Approval and dismissal decisions compare against this identity, so it is
// fetched fresh each run rather than carried over.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	data, err := c.MakeGraphQLRequest(ctx, `query { viewer { login } }`, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}

	viewer, ok := data["viewer"].(map[string]any)
	if !ok {
		return "", errors.New("malformed viewer response")
	}
	login, ok := viewer["login"].(string)
	if !ok || login == "" {
		return "", errors.New("viewer login missing from response")
	}
	return login, nil
}
