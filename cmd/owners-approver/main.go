// Package main implements a GitHub Action that requests reviews from code
// owners and approves a pull request once every changed file is covered by an
// approving owner.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/action"
	"github.com/codeGROOVE-dev/owners-approver/pkg/approver"
	"github.com/codeGROOVE-dev/owners-approver/pkg/github"
	"github.com/codeGROOVE-dev/owners-approver/pkg/owners"
)

var (
	verbose = flag.Bool("v", false, "Verbose output with detailed diagnostics")
	dryRun  = flag.Bool("dry-run", false, "Run in dry-run mode (no reviewer requests, approvals, or dismissals)")
)

func main() {
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	inputs, err := action.LoadInputs()
	if err != nil {
		slog.Error("Invalid action inputs", "error", err)
		os.Exit(1)
	}

	ev, err := action.LoadEvent()
	if err != nil {
		var unsupported action.ErrUnsupportedEvent
		if errors.As(err, &unsupported) {
			// Report and perform no action; the workflow itself is the
			// misconfiguration, not this run.
			slog.Error("Unsupported trigger", "error", err)
			return
		}
		slog.Error("Failed to load event", "error", err)
		os.Exit(1)
	}

	client, err := github.New(ctx, github.Config{
		Token:       inputs.Token,
		HTTPTimeout: 30 * time.Second,
	})
	if err != nil {
		slog.Error("Failed to create GitHub client", "error", err)
		os.Exit(1)
	}

	workspace := os.Getenv("GITHUB_WORKSPACE")
	if workspace == "" {
		slog.Error("GITHUB_WORKSPACE is not set")
		os.Exit(1)
	}

	app := approver.New(client, owners.LocalSource{Root: workspace}, approver.Config{
		OwnersFilename: inputs.Source,
		IgnorePatterns: inputs.IgnoreFiles,
		ShouldDismiss:  true,
		DryRun:         *dryRun,
		Summary:        action.AppendSummary,
	})

	slog.Info("Running approval evaluation", "event", ev.Name,
		"owner", ev.PullRequest.Owner, "repo", ev.PullRequest.Repository, "pr", ev.PullRequest.Number)
	if err := app.Run(ctx, ev); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}
