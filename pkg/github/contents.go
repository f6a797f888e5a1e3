package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// FileExists reports whether a regular file exists in a repository at the
// given ref. Used by the bot to probe for owners files without a local
// checkout. A directory or symlink at the path reports false, matching the
// filesystem probe the Action uses.
func (c *Client) FileExists(ctx context.Context, owner, repo, ref, path string) (bool, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.apiBase, owner, repo, escapePath(path), url.QueryEscape(ref))
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return false, err
	}
	defer drainAndCloseBody(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("failed to check file existence for %s (status %d)", path, resp.StatusCode)
	}

	// The contents API also answers 200 for directories, as a JSON array of
	// entries. A file is a single object carrying a type field.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read contents response for %s: %w", path, err)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] == '[' {
		return false, nil
	}

	var entry struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return false, fmt.Errorf("failed to decode contents response for %s: %w", path, err)
	}
	return entry.Type == "file", nil
}

// FileContent fetches the contents of a file in a repository at the given ref.
func (c *Client) FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	slog.Info("Fetching file contents", "component", "api", "owner", owner, "repo", repo, "ref", ref, "path", path)
	apiURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.apiBase, owner, repo, escapePath(path), url.QueryEscape(ref))
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get file contents for %s (status %d)", path, resp.StatusCode)
	}

	var data struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode file contents: %w", err)
	}

	if data.Encoding != "base64" {
		return []byte(data.Content), nil
	}

	// The API wraps base64 payloads in newlines.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(data.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 file contents: %w", err)
	}
	return decoded, nil
}

// escapePath escapes each path segment while preserving separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
