package github

import (
	"context"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// API defines the GitHub operations the approval pipeline consumes.
// This allows the pipeline to be tested against a mock client.
type API interface {
	// Pull request operations
	PullRequest(ctx context.Context, owner, repo string, prNumber int) (*types.PullRequest, error)
	ChangedFiles(ctx context.Context, owner, repo string, prNumber int) ([]string, error)
	Reviews(ctx context.Context, owner, repo string, prNumber int) ([]types.Review, error)
	RequestedReviewers(ctx context.Context, owner, repo string, prNumber int) ([]string, error)
	RequestReviewers(ctx context.Context, owner, repo string, prNumber int, reviewers []string) error
	CreateReview(ctx context.Context, owner, repo string, prNumber int, event, body string) error
	DismissReview(ctx context.Context, owner, repo string, prNumber int, reviewID int64, message string) error

	// Repository contents (owners files at a ref, used by the bot)
	FileExists(ctx context.Context, owner, repo, ref, path string) (bool, error)
	FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error)

	// Identity
	AuthenticatedUser(ctx context.Context) (string, error)
}

// PrxClient defines the interface for enriched PR data fetching (CI status,
// mergeability). The payload stays opaque to this package; callers treat it
// as supplemental context, never as pipeline input.
type PrxClient interface {
	PullRequestWithReferenceTime(ctx context.Context, owner, repo string, prNumber int, referenceTime time.Time) (any, error)
}

// Compile-time check that Client satisfies API.
var _ API = (*Client)(nil)
