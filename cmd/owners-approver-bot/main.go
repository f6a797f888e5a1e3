// Package main implements a GitHub App bot that runs code-owner approval
// gating for pull requests across all installed organizations, reading owners
// files through the Contents API instead of a local checkout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/approver"
	"github.com/codeGROOVE-dev/owners-approver/pkg/cache"
	"github.com/codeGROOVE-dev/owners-approver/pkg/github"
	"github.com/codeGROOVE-dev/owners-approver/pkg/owners"
	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
	"github.com/codeGROOVE-dev/prx/pkg/prx"
)

var (
	// GitHub App authentication flags.
	appID      = flag.String("app-id", "", "GitHub App ID for authentication")
	appKeyPath = flag.String("app-key-path", "", "Path to GitHub App private key file")

	// Behavior flags.
	source      = flag.String("source", "OWNERS", "Filename treated as the owners-declaration file")
	ignoreFiles = flag.String("ignore-files", "", "Comma-separated glob patterns of changed files to ignore")
	dryRun      = flag.Bool("dry-run", false, "Run in dry-run mode (no reviewer requests, approvals, or dismissals)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "GitHub App bot that gates PR approval on code-owner coverage across all installed organizations.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GITHUB_APP_ID       - GitHub App ID\n")
		fmt.Fprintf(os.Stderr, "  GITHUB_APP_KEY      - GitHub App private key content (PEM)\n")
		fmt.Fprintf(os.Stderr, "  GITHUB_APP_KEY_PATH - Path to GitHub App private key file\n")
		fmt.Fprintf(os.Stderr, "  PORT                - HTTP server port (default: 8080)\n")
	}
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := github.New(ctx, github.Config{
		UseAppAuth:  true,
		AppID:       *appID,
		AppKeyPath:  *appKeyPath,
		HTTPTimeout: 30 * time.Second,
	})
	if err != nil {
		slog.Error("Failed to create GitHub client", "error", err)
		os.Exit(1)
	}

	// prx supplies enriched PR data (CI status, mergeability) for the event
	// log and health metrics; approval decisions never depend on it.
	token, err := client.Token(ctx)
	if err != nil {
		slog.Error("Failed to get GitHub token for prx client", "error", err)
		os.Exit(1)
	}
	client.SetPrxClient(&prxAdapter{client: prx.NewClient(token, prx.WithLogger(logger))})

	bot := &Bot{
		client:      client,
		ownersCache: cache.New(10 * time.Minute),
		monitors:    make(map[string]*sprinklerMonitor),
		metrics:     newMetricsCollector(),
		sourceName:  *source,
		ignoreGlobs: splitCommaList(*ignoreFiles),
		dryRun:      *dryRun,
	}

	orgs, err := client.ListAppInstallations(ctx)
	if err != nil {
		slog.Error("Failed to list app installations", "error", err)
		os.Exit(1)
	}
	if len(orgs) == 0 {
		slog.Error("No installations found; nothing to monitor")
		os.Exit(1)
	}

	for _, org := range orgs {
		monitor := newSprinklerMonitor(bot, org)
		bot.monitors[org] = monitor
		if err := monitor.start(ctx); err != nil {
			slog.Error("Failed to start monitor", "org", org, "error", err)
		}
	}

	go bot.serveHealth()

	<-ctx.Done()
	slog.Info("Shutting down")
	for _, monitor := range bot.monitors {
		monitor.stop()
	}
}

// prxAdapter narrows *prx.Client to the opaque interface pkg/github accepts.
type prxAdapter struct {
	client *prx.Client
}

func (a *prxAdapter) PullRequestWithReferenceTime(ctx context.Context, owner, repo string, prNumber int, referenceTime time.Time) (any, error) {
	return a.client.PullRequestWithReferenceTime(ctx, owner, repo, prNumber, referenceTime)
}

// Bot runs the approval pipeline for PR events across installed organizations.
type Bot struct {
	client      *github.Client
	ownersCache *cache.Cache
	monitors    map[string]*sprinklerMonitor
	metrics     *metricsCollector
	sourceName  string
	ignoreGlobs []string
	dryRun      bool
}

// processEvent runs the pipeline for one PR event. The review state and
// sender are not carried on the event stream, so review events run with an
// unknown sender; the idempotent apply step keeps the bot from reacting to
// its own approvals indefinitely.
func (b *Bot) processEvent(ctx context.Context, eventType string, ref prRef) error {
	b.client.SetCurrentOrg(ref.owner)
	defer b.client.SetCurrentOrg("")

	pr, err := b.client.PullRequest(ctx, ref.owner, ref.repo, ref.number)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w", err)
	}
	b.metrics.recordPRSeen(ref.owner, ref.repo, ref.number)

	// Supplemental only; an unreachable prx backend never blocks the run.
	enriched, err := b.client.EnrichedPullRequest(ctx, ref.owner, ref.repo, ref.number, time.Now())
	b.metrics.recordEnrichedFetch(err == nil)
	if err != nil {
		slog.Warn("Enriched PR data unavailable", "component", "bot",
			"owner", ref.owner, "repo", ref.repo, "pr", ref.number, "error", err)
	} else {
		slog.Debug("Fetched enriched PR data", "component", "bot",
			"owner", ref.owner, "repo", ref.repo, "pr", ref.number, "has_data", enriched != nil)
	}

	src := owners.RepoSource{
		API:   b.client,
		Cache: b.ownersCache,
		Owner: ref.owner,
		Repo:  ref.repo,
		Ref:   pr.BaseRef,
	}

	app := approver.New(b.client, src, approver.Config{
		OwnersFilename: b.sourceName,
		IgnorePatterns: b.ignoreGlobs,
		ShouldDismiss:  true,
		DryRun:         b.dryRun,
	})

	ev := types.Event{
		Name:        eventType,
		ReviewState: "approved",
		PullRequest: *pr,
	}
	if err := app.Run(ctx, ev); err != nil {
		return err
	}

	b.metrics.recordRunComplete()
	return nil
}

// metricsCollector tracks counters for the health endpoint.
type metricsCollector struct {
	uniquePRsSeen   map[string]bool
	lastRun         time.Time
	totalRuns       int64
	enrichedOK      int64
	enrichedFailed  int64
	mu              sync.RWMutex
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{uniquePRsSeen: make(map[string]bool)}
}

func (m *metricsCollector) recordPRSeen(owner, repo string, prNumber int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uniquePRsSeen[fmt.Sprintf("%s/%s#%d", owner, repo, prNumber)] = true
}

func (m *metricsCollector) recordRunComplete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalRuns++
	m.lastRun = time.Now()
}

func (m *metricsCollector) recordEnrichedFetch(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.enrichedOK++
	} else {
		m.enrichedFailed++
	}
}

// serveHealth exposes monitor and run status for liveness checks.
func (b *Bot) serveHealth() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		b.metrics.mu.RLock()
		totalRuns := b.metrics.totalRuns
		prsSeen := len(b.metrics.uniquePRsSeen)
		lastRun := b.metrics.lastRun
		enrichedOK := b.metrics.enrichedOK
		enrichedFailed := b.metrics.enrichedFailed
		b.metrics.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "ok\nruns=%d\nprs_seen=%d\nenriched_ok=%d\nenriched_failed=%d\n",
			totalRuns, prsSeen, enrichedOK, enrichedFailed)
		if !lastRun.IsZero() {
			fmt.Fprintf(w, "last_run=%s\n", lastRun.Format(time.RFC3339))
		}
		for org, monitor := range b.monitors {
			fmt.Fprintf(w, "monitor_%s_connected=%t\n", org, monitor.connected())
		}
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting health server", "port", port)
	if err := server.ListenAndServe(); err != nil {
		slog.Error("Health server stopped", "error", err)
	}
}

func splitCommaList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}
