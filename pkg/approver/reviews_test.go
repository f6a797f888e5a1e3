package approver

import (
	"reflect"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

func TestLatestReviews_LatestWins(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reviews := []types.Review{
		{Reviewer: "bob", State: types.ReviewApproved, SubmittedAt: base, ID: 1},
		{Reviewer: "bob", State: types.ReviewDismissed, SubmittedAt: base.Add(time.Hour), ID: 2},
		{Reviewer: "carol", State: types.ReviewChangesRequested, SubmittedAt: base, ID: 3},
		{Reviewer: "carol", State: types.ReviewApproved, SubmittedAt: base.Add(2 * time.Hour), ID: 4},
	}

	latest := LatestReviews(reviews)

	if got := latest["bob"]; got.State != types.ReviewDismissed || got.ID != 2 {
		t.Errorf("bob's latest = %+v, want the dismissal", got)
	}
	if got := latest["carol"]; got.State != types.ReviewApproved || got.ID != 4 {
		t.Errorf("carol's latest = %+v, want the approval", got)
	}
}

func TestLatestReviews_OrderOfInputIrrelevantForDistinctTimes(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	forward := []types.Review{
		{Reviewer: "bob", State: types.ReviewApproved, SubmittedAt: base},
		{Reviewer: "bob", State: types.ReviewDismissed, SubmittedAt: base.Add(time.Hour)},
	}
	backward := []types.Review{forward[1], forward[0]}

	if !reflect.DeepEqual(LatestReviews(forward), LatestReviews(backward)) {
		t.Error("latest review must depend on timestamps, not input order")
	}
}

func TestLatestReviews_TimestampTieLastSeenWins(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	reviews := []types.Review{
		{Reviewer: "bob", State: types.ReviewApproved, SubmittedAt: at, ID: 1},
		{Reviewer: "bob", State: types.ReviewCommented, SubmittedAt: at, ID: 2},
	}

	if got := LatestReviews(reviews)["bob"]; got.ID != 2 {
		t.Errorf("exact timestamp tie should keep the later input entry, got ID %d", got.ID)
	}
}

func TestLatestReviews_SkipsEmptyReviewer(t *testing.T) {
	reviews := []types.Review{
		{Reviewer: "", State: types.ReviewApproved},
	}
	if got := LatestReviews(reviews); len(got) != 0 {
		t.Errorf("reviews without a reviewer must be ignored, got %v", got)
	}
}

func TestApproversAndParticipants(t *testing.T) {
	latest := map[string]types.Review{
		"bob":   {Reviewer: "bob", State: types.ReviewApproved},
		"carol": {Reviewer: "carol", State: types.ReviewChangesRequested},
		"dave":  {Reviewer: "dave", State: types.ReviewApproved},
	}

	if got, want := Approvers(latest), []string{"bob", "dave"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Approvers = %v, want %v", got, want)
	}
	if got, want := Participants(latest), []string{"bob", "carol", "dave"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Participants = %v, want %v", got, want)
	}
}
