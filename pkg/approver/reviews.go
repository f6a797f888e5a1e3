// Package approver decides whether a pull request has sufficient code-owner
// approvals and applies that decision: request missing reviewers, approve, or
// dismiss a stale approval. State is recomputed from scratch every run since
// approvals and file sets change outside this system's control.
package approver

import (
	"sort"

	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// LatestReviews folds the full review history into the most recent review per
// reviewer, compared by submission time. An exact timestamp tie resolves to
// the later entry in input order.
func LatestReviews(reviews []types.Review) map[string]types.Review {
	latest := make(map[string]types.Review, len(reviews))
	for _, r := range reviews {
		if r.Reviewer == "" {
			continue
		}
		if cur, ok := latest[r.Reviewer]; ok && r.SubmittedAt.Before(cur.SubmittedAt) {
			continue
		}
		latest[r.Reviewer] = r
	}
	return latest
}

// Approvers returns the reviewers whose latest review state is APPROVED, sorted.
func Approvers(latest map[string]types.Review) []string {
	var approvers []string
	for reviewer, r := range latest {
		if r.State == types.ReviewApproved {
			approvers = append(approvers, reviewer)
		}
	}
	sort.Strings(approvers)
	return approvers
}

// Participants returns every reviewer with any review activity, sorted.
func Participants(latest map[string]types.Review) []string {
	participants := make([]string, 0, len(latest))
	for reviewer := range latest {
		participants = append(participants, reviewer)
	}
	sort.Strings(participants)
	return participants
}
