package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// PR-related constants.
const (
	perPageLimit = 100 // GitHub API per_page limit
)

// PullRequest fetches the fields of a pull request this system acts on.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, prNumber int) (*types.PullRequest, error) {
	slog.Info("Fetching PR details to get author and base branch", "component", "api", "owner", owner, "repo", repo, "pr", prNumber)
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiBase, owner, repo, prNumber)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get PR (status %d)", resp.StatusCode)
	}

	var prData struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		Number int `json:"number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&prData); err != nil {
		return nil, fmt.Errorf("failed to decode pull request: %w", err)
	}

	return &types.PullRequest{
		Number:     prData.Number,
		Author:     prData.User.Login,
		BaseRef:    prData.Base.Ref,
		Owner:      owner,
		Repository: repo,
	}, nil
}

// ChangedFiles fetches the filenames changed in a PR, following pagination
// until the full list is assembled.
func (c *Client) ChangedFiles(ctx context.Context, owner, repo string, prNumber int) ([]string, error) {
	slog.Info("Fetching changed files for PR to resolve owners coverage", "component", "api", "owner", owner, "repo", repo, "pr", prNumber)

	var filenames []string
	for page := 1; ; page++ {
		apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files?per_page=%d&page=%d",
			c.apiBase, owner, repo, prNumber, perPageLimit, page)

		count, err := func() (int, error) {
			resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
			if err != nil {
				return 0, err
			}
			defer drainAndCloseBody(resp.Body)

			if resp.StatusCode != http.StatusOK {
				return 0, fmt.Errorf("failed to list changed files (status %d)", resp.StatusCode)
			}

			var files []struct {
				Filename string `json:"filename"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
				return 0, fmt.Errorf("failed to decode changed files: %w", err)
			}

			for _, f := range files {
				filenames = append(filenames, f.Filename)
			}
			return len(files), nil
		}()
		if err != nil {
			return nil, err
		}
		if count < perPageLimit {
			break
		}
	}

	return filenames, nil
}

// Reviews fetches the full review history of a PR, following pagination. The
// caller reduces this to the latest review per reviewer.
func (c *Client) Reviews(ctx context.Context, owner, repo string, prNumber int) ([]types.Review, error) {
	slog.Info("Fetching review history for PR to compute latest review per reviewer", "component", "api", "owner", owner, "repo", repo, "pr", prNumber)

	var reviews []types.Review
	for page := 1; ; page++ {
		apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews?per_page=%d&page=%d",
			c.apiBase, owner, repo, prNumber, perPageLimit, page)

		count, err := func() (int, error) {
			resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
			if err != nil {
				return 0, err
			}
			defer drainAndCloseBody(resp.Body)

			if resp.StatusCode != http.StatusOK {
				return 0, fmt.Errorf("failed to list reviews (status %d)", resp.StatusCode)
			}

			var raw []struct {
				User struct {
					Login string `json:"login"`
				} `json:"user"`
				State       string `json:"state"`
				SubmittedAt string `json:"submitted_at"`
				ID          int64  `json:"id"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
				return 0, fmt.Errorf("failed to decode reviews: %w", err)
			}

			for _, r := range raw {
				review := types.Review{
					ID:       r.ID,
					Reviewer: r.User.Login,
					State:    r.State,
				}
				if r.SubmittedAt != "" {
					t, err := time.Parse(time.RFC3339, r.SubmittedAt)
					if err != nil {
						slog.Warn("Failed to parse review submitted_at", "component", "api", "review", r.ID, "error", err)
					} else {
						review.SubmittedAt = t
					}
				}
				reviews = append(reviews, review)
			}
			return len(raw), nil
		}()
		if err != nil {
			return nil, err
		}
		if count < perPageLimit {
			break
		}
	}

	return reviews, nil
}

// RequestedReviewers fetches the users currently requested to review a PR.
func (c *Client) RequestedReviewers(ctx context.Context, owner, repo string, prNumber int) ([]string, error) {
	slog.Info("Fetching requested reviewers for PR to avoid redundant review requests", "component", "api", "owner", owner, "repo", repo, "pr", prNumber)
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/requested_reviewers", c.apiBase, owner, repo, prNumber)
	resp, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list requested reviewers (status %d)", resp.StatusCode)
	}

	var data struct {
		Users []struct {
			Login string `json:"login"`
		} `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode requested reviewers: %w", err)
	}

	reviewers := make([]string, 0, len(data.Users))
	for _, u := range data.Users {
		reviewers = append(reviewers, u.Login)
	}
	return reviewers, nil
}

// RequestReviewers requests reviews from the given users on a PR.
func (c *Client) RequestReviewers(ctx context.Context, owner, repo string, prNumber int, reviewers []string) error {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/requested_reviewers", c.apiBase, owner, repo, prNumber)

	payload := map[string]any{
		"reviewers": reviewers,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to request reviewers: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to request reviewers (status %d)", resp.StatusCode)
	}

	slog.Info("Requested reviewers on PR", "component", "api", "owner", owner, "repo", repo, "pr", prNumber, "reviewers", reviewers)
	return nil
}

// CreateReview creates a review on a PR with the given event (e.g. "APPROVE")
// and body text.
func (c *Client) CreateReview(ctx context.Context, owner, repo string, prNumber int, event, body string) error {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", c.apiBase, owner, repo, prNumber)

	payload := map[string]any{
		"event": event,
		"body":  body,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to create review (status %d)", resp.StatusCode)
	}

	slog.Info("Created review on PR", "component", "api", "owner", owner, "repo", repo, "pr", prNumber, "event", event)
	return nil
}

// DismissReview dismisses a previously submitted review by identifier.
func (c *Client) DismissReview(ctx context.Context, owner, repo string, prNumber int, reviewID int64, message string) error {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews/%d/dismissals", c.apiBase, owner, repo, prNumber, reviewID)

	payload := map[string]any{
		"message": message,
	}

	resp, err := c.doRequest(ctx, http.MethodPut, apiURL, payload)
	if err != nil {
		return fmt.Errorf("failed to dismiss review: %w", err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to dismiss review (status %d)", resp.StatusCode)
	}

	slog.Info("Dismissed stale review on PR", "component", "api", "owner", owner, "repo", repo, "pr", prNumber, "review", reviewID)
	return nil
}
