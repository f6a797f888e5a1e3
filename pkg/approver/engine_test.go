package approver

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/owners"
	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

const botActor = "owners-approver[bot]"

func reviewAt(reviewer, state string, hoursIn int, id int64) types.Review {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return types.Review{
		Reviewer:    reviewer,
		State:       state,
		SubmittedAt: base.Add(time.Duration(hoursIn) * time.Hour),
		ID:          id,
	}
}

func TestEngine_Evaluate(t *testing.T) {
	m := owners.Map{
		"bob":   {"a.go": true},
		"carol": {"b.go": true},
	}
	changed := []string{"a.go", "b.go"}

	tests := []struct {
		name          string
		reviews       []types.Review
		wantUncovered map[string][]string
		wantApprove   bool
	}{
		{
			name:          "no reviews leaves everything uncovered",
			wantUncovered: map[string][]string{"a.go": {"bob"}, "b.go": {"carol"}},
		},
		{
			name: "partial approval leaves the rest uncovered",
			reviews: []types.Review{
				reviewAt("bob", types.ReviewApproved, 0, 1),
			},
			wantUncovered: map[string][]string{"b.go": {"carol"}},
		},
		{
			name: "full coverage approves",
			reviews: []types.Review{
				reviewAt("bob", types.ReviewApproved, 0, 1),
				reviewAt("carol", types.ReviewApproved, 1, 2),
			},
			wantApprove: true,
		},
		{
			name: "later dismissal voids an earlier approval",
			reviews: []types.Review{
				reviewAt("bob", types.ReviewApproved, 0, 1),
				reviewAt("carol", types.ReviewApproved, 1, 2),
				reviewAt("bob", types.ReviewDismissed, 2, 3),
			},
			wantUncovered: map[string][]string{"a.go": {"bob"}},
		},
		{
			name: "re-approval after dismissal counts again",
			reviews: []types.Review{
				reviewAt("bob", types.ReviewApproved, 0, 1),
				reviewAt("bob", types.ReviewDismissed, 1, 2),
				reviewAt("bob", types.ReviewApproved, 2, 3),
				reviewAt("carol", types.ReviewApproved, 0, 4),
			},
			wantApprove: true,
		},
		{
			name: "comments and change requests grant no coverage",
			reviews: []types.Review{
				reviewAt("bob", types.ReviewCommented, 0, 1),
				reviewAt("carol", types.ReviewChangesRequested, 0, 2),
			},
			wantUncovered: map[string][]string{"a.go": {"bob"}, "b.go": {"carol"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := Engine{Actor: botActor}
			got := engine.Evaluate(changed, m, LatestReviews(tt.reviews))
			if got.Approve != tt.wantApprove {
				t.Errorf("Approve = %v, want %v", got.Approve, tt.wantApprove)
			}
			if tt.wantApprove {
				if len(got.Uncovered) != 0 {
					t.Errorf("approved decision carries uncovered files: %v", got.Uncovered)
				}
				return
			}
			if !reflect.DeepEqual(got.Uncovered, tt.wantUncovered) {
				t.Errorf("Uncovered = %v, want %v", got.Uncovered, tt.wantUncovered)
			}
		})
	}
}

func TestEngine_Evaluate_FileWithoutOwners(t *testing.T) {
	m := owners.Map{"bob": {"a.go": true}}
	latest := LatestReviews([]types.Review{reviewAt("bob", types.ReviewApproved, 0, 1)})

	engine := Engine{Actor: botActor}
	got := engine.Evaluate([]string{"a.go", "orphan.go"}, m, latest)

	if got.Approve {
		t.Fatal("a file nobody owns must block approval")
	}
	reviewers, ok := got.Uncovered["orphan.go"]
	if !ok {
		t.Fatal("orphan.go missing from uncovered set")
	}
	if len(reviewers) != 0 {
		t.Errorf("orphan.go should list no owners, got %v", reviewers)
	}
}

func TestEngine_Evaluate_Dismissal(t *testing.T) {
	m := owners.Map{"bob": {"a.go": true}}
	changed := []string{"a.go", "b.go"}

	tests := []struct {
		name          string
		reviews       []types.Review
		shouldDismiss bool
		wantDismissID int64
	}{
		{
			name: "stale own approval dismissed when enabled",
			reviews: []types.Review{
				reviewAt(botActor, types.ReviewApproved, 0, 42),
			},
			shouldDismiss: true,
			wantDismissID: 42,
		},
		{
			name: "dismissal disabled leaves approval standing",
			reviews: []types.Review{
				reviewAt(botActor, types.ReviewApproved, 0, 42),
			},
		},
		{
			name: "already dismissed approval is not re-dismissed",
			reviews: []types.Review{
				reviewAt(botActor, types.ReviewApproved, 0, 42),
				reviewAt(botActor, types.ReviewDismissed, 1, 43),
			},
			shouldDismiss: true,
		},
		{
			name: "other reviewers' approvals are never dismissed",
			reviews: []types.Review{
				reviewAt("bob", types.ReviewApproved, 0, 7),
			},
			shouldDismiss: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := Engine{Actor: botActor, ShouldDismiss: tt.shouldDismiss}
			got := engine.Evaluate(changed, m, LatestReviews(tt.reviews))
			if got.Approve {
				t.Fatal("coverage is incomplete, decision must not approve")
			}
			if got.DismissReviewID != tt.wantDismissID {
				t.Errorf("DismissReviewID = %d, want %d", got.DismissReviewID, tt.wantDismissID)
			}
		})
	}
}

func TestSummarizeUncovered(t *testing.T) {
	summary := SummarizeUncovered(map[string][]string{
		"pkg/z.go": {"bob", "carol"},
		"a.go":     nil,
	})

	wantLines := []string{
		"### Files awaiting code owner approval",
		"- `a.go`: no owners found",
		"- `pkg/z.go`: @bob, @carol",
	}
	for _, line := range wantLines {
		if !strings.Contains(summary, line) {
			t.Errorf("summary missing %q:\n%s", line, summary)
		}
	}

	// Files render in sorted order regardless of map iteration.
	if strings.Index(summary, "a.go") > strings.Index(summary, "pkg/z.go") {
		t.Errorf("files out of order:\n%s", summary)
	}
}
