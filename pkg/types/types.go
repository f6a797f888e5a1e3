// Package types contains shared data structures used across the owners-approver system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

import "time"

// Review states as reported by the GitHub reviews API.
const (
	ReviewApproved         = "APPROVED"
	ReviewDismissed        = "DISMISSED"
	ReviewCommented        = "COMMENTED"
	ReviewChangesRequested = "CHANGES_REQUESTED"
	ReviewPending          = "PENDING"
)

// PullRequest represents the subset of a GitHub pull request this system acts on.
type PullRequest struct {
	Author     string
	Owner      string
	Repository string
	BaseRef    string
	Number     int
}

// Review represents a single review on a pull request.
type Review struct {
	SubmittedAt time.Time
	Reviewer    string
	State       string // APPROVED, DISMISSED, COMMENTED, CHANGES_REQUESTED, or PENDING
	ID          int64
}

// Event identifies what triggered a run and the payload fields the run needs.
type Event struct {
	Name        string // "pull_request", "pull_request_target", or "pull_request_review"
	Sender      string
	ReviewState string // lowercase review state for pull_request_review events ("approved", "dismissed", ...)
	PullRequest PullRequest
}

// Decision is the outcome of one approval evaluation.
type Decision struct {
	// Uncovered maps each changed file without approval coverage to the
	// reviewers who could provide it. Empty iff Approve is true.
	Uncovered map[string][]string
	// DismissReviewID identifies a stale approval to retract, zero when
	// nothing needs dismissing.
	DismissReviewID int64
	Approve         bool
}
