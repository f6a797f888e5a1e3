package approver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeGROOVE-dev/owners-approver/pkg/owners"
	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// Engine evaluates approval sufficiency for one pull request.
type Engine struct {
	// Actor is the authenticated identity this run acts as. Dismissal
	// targets only this identity's own stale approval.
	Actor string
	// ShouldDismiss enables retracting the actor's prior approval when
	// uncovered changes appear.
	ShouldDismiss bool
}

// Evaluate computes the approval decision: APPROVE when the union of files
// owned by currently-approving reviewers covers every changed file, otherwise
// the uncovered files and their responsible owners, plus the actor's own
// stale approval to dismiss if one stands.
func (e Engine) Evaluate(changedFiles []string, m owners.Map, latest map[string]types.Review) types.Decision {
	covered := m.Covered(Approvers(latest))

	uncovered := make(map[string][]string)
	for _, file := range changedFiles {
		if !covered[file] {
			uncovered[file] = m.OwnersOf(file)
		}
	}

	if len(uncovered) == 0 {
		return types.Decision{Approve: true}
	}

	decision := types.Decision{Uncovered: uncovered}
	if e.ShouldDismiss {
		if r, ok := latest[e.Actor]; ok && r.State == types.ReviewApproved {
			decision.DismissReviewID = r.ID
		}
	}
	return decision
}

// SummarizeUncovered renders the uncovered files and their responsible owners
// as a markdown list, for the run log and the workflow step summary.
func SummarizeUncovered(uncovered map[string][]string) string {
	files := make([]string, 0, len(uncovered))
	for file := range uncovered {
		files = append(files, file)
	}
	sort.Strings(files)

	var b strings.Builder
	b.WriteString("### Files awaiting code owner approval\n\n")
	for _, file := range files {
		reviewers := uncovered[file]
		if len(reviewers) == 0 {
			fmt.Fprintf(&b, "- `%s`: no owners found\n", file)
			continue
		}
		fmt.Fprintf(&b, "- `%s`: @%s\n", file, strings.Join(reviewers, ", @"))
	}
	return b.String()
}
