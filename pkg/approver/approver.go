package approver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/codeGROOVE-dev/owners-approver/pkg/github"
	"github.com/codeGROOVE-dev/owners-approver/pkg/owners"
	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

const (
	// approveEvent is the review event value the GitHub API expects.
	approveEvent   = "APPROVE"
	approveBody    = "All changed files are covered by code owner approvals."
	dismissMessage = "Changed files are no longer fully covered by code owner approvals."
)

// Config holds configuration for approval runs.
type Config struct {
	// OwnersFilename is the declaration filename checked at every
	// directory level, e.g. "OWNERS".
	OwnersFilename string
	// IgnorePatterns are glob patterns; matching changed files are
	// excluded before ownership resolution.
	IgnorePatterns []string
	// Summary, when set, receives the markdown summary of uncovered files.
	Summary func(markdown string)
	// ShouldDismiss enables retracting the actor's stale approval.
	ShouldDismiss bool
	// DryRun logs mutations instead of performing them.
	DryRun bool
}

// Approver runs reviewer assignment and approval gating for pull requests.
type Approver struct {
	client github.API
	source owners.Source
	cfg    Config
}

// New creates an Approver reading owners files from the given source.
func New(client github.API, source owners.Source, cfg Config) *Approver {
	return &Approver{client: client, source: source, cfg: cfg}
}

// Run executes the pipeline for one trigger event. Pull request events run
// reviewer assignment and then the approval evaluation; review events run
// only the evaluation, and only when the sender is not this system's own
// identity and the review was approved or dismissed. Platform API failures
// are fatal to the run.
func (a *Approver) Run(ctx context.Context, ev types.Event) error {
	pr := ev.PullRequest

	// Independent read-only fetches, issued concurrently and joined before
	// anything proceeds.
	var (
		wg      sync.WaitGroup
		files   []string
		reviews []types.Review
		actor   string
		errs    [3]error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		files, errs[0] = a.client.ChangedFiles(ctx, pr.Owner, pr.Repository, pr.Number)
	}()
	go func() {
		defer wg.Done()
		reviews, errs[1] = a.client.Reviews(ctx, pr.Owner, pr.Repository, pr.Number)
	}()
	go func() {
		defer wg.Done()
		actor, errs[2] = a.client.AuthenticatedUser(ctx)
	}()
	wg.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		return fmt.Errorf("failed to fetch pull request state: %w", err)
	}

	assignReviewers := false
	switch ev.Name {
	case "pull_request", "pull_request_target":
		assignReviewers = true
	case "pull_request_review":
		if ev.Sender == actor {
			slog.Info("Ignoring review event from own identity", "component", "approver", "sender", ev.Sender)
			return nil
		}
		if ev.ReviewState != "approved" && ev.ReviewState != "dismissed" {
			slog.Info("Ignoring review event with irrelevant state", "component", "approver", "state", ev.ReviewState)
			return nil
		}
	default:
		return fmt.Errorf("unsupported event: %q", ev.Name)
	}

	files = owners.FilterIgnored(files, a.cfg.IgnorePatterns)
	sort.Strings(files)
	slog.Info("Resolving ownership for changed files", "component", "approver",
		"owner", pr.Owner, "repo", pr.Repository, "pr", pr.Number, "files", len(files))

	locator := owners.Locator{Source: a.source, Filename: a.cfg.OwnersFilename}
	locations := locator.LocateAll(ctx, files)

	paths := owners.Located(locations)
	if len(paths) == 0 {
		// No changed file resolved anywhere: the root owners file is the
		// sole source.
		paths = []string{a.cfg.OwnersFilename}
	}
	reviewersByPath := owners.Read(ctx, a.source, paths)
	fallback := owners.Merge(reviewersByPath)

	ownersMap := owners.Build(locations, reviewersByPath, fallback, pr.Author)
	latest := LatestReviews(reviews)

	if assignReviewers {
		if err := a.assign(ctx, pr, ownersMap, latest); err != nil {
			return err
		}
	}

	engine := Engine{Actor: actor, ShouldDismiss: a.cfg.ShouldDismiss}
	decision := engine.Evaluate(files, ownersMap, latest)
	return a.apply(ctx, pr, decision, latest, actor)
}

// assign requests reviews from owners not yet requested or participating.
func (a *Approver) assign(ctx context.Context, pr types.PullRequest, m owners.Map, latest map[string]types.Review) error {
	requested, err := a.client.RequestedReviewers(ctx, pr.Owner, pr.Repository, pr.Number)
	if err != nil {
		return fmt.Errorf("failed to list requested reviewers: %w", err)
	}

	toAdd := Plan(requested, Participants(latest), m)
	if len(toAdd) == 0 {
		slog.Info("All owners already requested or participating", "component", "approver", "pr", pr.Number)
		return nil
	}

	if a.cfg.DryRun {
		slog.Info("Would request reviewers (dry-run)", "component", "approver", "pr", pr.Number, "reviewers", toAdd)
		return nil
	}
	return a.client.RequestReviewers(ctx, pr.Owner, pr.Repository, pr.Number, toAdd)
}

// apply performs the side effects of a decision. Applying the same decision
// twice is safe: an approval that already stands is not repeated, and a
// dismissal targets a concrete review identifier.
func (a *Approver) apply(ctx context.Context, pr types.PullRequest, decision types.Decision, latest map[string]types.Review, actor string) error {
	if decision.Approve {
		if r, ok := latest[actor]; ok && r.State == types.ReviewApproved {
			slog.Info("Approval already standing", "component", "approver", "pr", pr.Number)
			return nil
		}
		if a.cfg.DryRun {
			slog.Info("Would approve PR (dry-run)", "component", "approver", "pr", pr.Number)
			return nil
		}
		return a.client.CreateReview(ctx, pr.Owner, pr.Repository, pr.Number, approveEvent, approveBody)
	}

	summary := SummarizeUncovered(decision.Uncovered)
	slog.Info("Changed files not fully covered by approvals", "component", "approver",
		"pr", pr.Number, "uncovered", len(decision.Uncovered))
	if a.cfg.Summary != nil {
		a.cfg.Summary(summary)
	}

	if decision.DismissReviewID != 0 {
		if a.cfg.DryRun {
			slog.Info("Would dismiss stale approval (dry-run)", "component", "approver",
				"pr", pr.Number, "review", decision.DismissReviewID)
			return nil
		}
		return a.client.DismissReview(ctx, pr.Owner, pr.Repository, pr.Number, decision.DismissReviewID, dismissMessage)
	}
	return nil
}
