package approver

import (
	"github.com/codeGROOVE-dev/owners-approver/pkg/owners"
)

// Plan computes which owners still need a review request: every reviewer in
// the ownership map that is neither already requested nor has submitted any
// review. Re-running with unchanged inputs yields an empty delta, so review
// requests are never duplicated.
func Plan(requested, participants []string, m owners.Map) []string {
	existing := make(map[string]bool, len(requested)+len(participants))
	for _, r := range requested {
		existing[r] = true
	}
	for _, r := range participants {
		existing[r] = true
	}

	var toAdd []string
	for _, reviewer := range m.Reviewers() {
		if !existing[reviewer] {
			toAdd = append(toAdd, reviewer)
		}
	}
	return toAdd
}
