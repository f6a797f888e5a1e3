package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sprinkler/pkg/client"
)

const (
	eventChannelSize     = 100              // Buffer size for event channel
	eventDedupWindow     = 5 * time.Second  // Time window for deduplicating events
	eventMapMaxSize      = 1000             // Maximum entries in event dedup map
	eventMapCleanupAge   = 1 * time.Hour    // Age threshold for cleaning up old entries
	processMaxRetries    = 3                // Max retries for event processing
	processMaxDelay      = 10 * time.Second // Max delay between retries
	maxReconnectAttempts = 100              // Max reconnection attempts
	reconnectBackoff     = 30 * time.Second // Initial backoff between reconnection attempts
	maxReconnectBackoff  = 5 * time.Minute
)

// prEvent is one PR event pulled off the stream.
type prEvent struct {
	eventType string
	url       string
}

// sprinklerMonitor manages WebSocket event subscriptions for a single org.
type sprinklerMonitor struct {
	mu                sync.RWMutex
	lastConnectedAt   time.Time
	lastEventAt       time.Time
	bot               *Bot
	client            *client.Client
	eventChan         chan prEvent
	lastEventMap      map[string]time.Time // Track last event per URL+type to dedupe
	stopChan          chan struct{}
	org               string
	reconnectAttempts int
	isRunning         bool
	isConnected       bool
	isStopped         bool
}

// newSprinklerMonitor creates a new sprinkler monitor for a specific org.
func newSprinklerMonitor(bot *Bot, org string) *sprinklerMonitor {
	return &sprinklerMonitor{
		bot:          bot,
		org:          org,
		eventChan:    make(chan prEvent, eventChannelSize),
		lastEventMap: make(map[string]time.Time),
		stopChan:     make(chan struct{}),
	}
}

// start begins monitoring PR and PR review events for this org.
func (sm *sprinklerMonitor) start(ctx context.Context) error {
	sm.mu.Lock()
	if sm.isRunning {
		sm.mu.Unlock()
		slog.Info("Monitor already running", "component", "sprinkler", "org", sm.org)
		return nil
	}
	sm.isRunning = true
	sm.isStopped = false
	sm.mu.Unlock()

	slog.Info("Starting event monitor for org", "component", "sprinkler", "org", sm.org)

	go sm.processEvents(ctx)
	go sm.manageConnection(ctx)

	return nil
}

// manageConnection restarts the WebSocket client whenever it gives up; the
// client has its own internal reconnection logic with exponential backoff.
func (sm *sprinklerMonitor) manageConnection(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopChan:
			return
		default:
			sm.mu.RLock()
			stopped := sm.isStopped
			sm.mu.RUnlock()
			if stopped {
				return
			}

			err := sm.connectWebSocket(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				if err != nil {
					return
				}
				// Clean exit; reset attempts and restart after a short delay.
				sm.mu.Lock()
				sm.reconnectAttempts = 0
				sm.mu.Unlock()
				select {
				case <-ctx.Done():
					return
				case <-sm.stopChan:
					return
				case <-time.After(5 * time.Second):
				}
				continue
			}

			sm.mu.Lock()
			sm.reconnectAttempts++
			attempts := sm.reconnectAttempts
			sm.mu.Unlock()

			if attempts >= maxReconnectAttempts {
				slog.Error("Max reconnection attempts reached, giving up", "component", "sprinkler", "org", sm.org, "attempts", attempts)
				return
			}

			backoff := reconnectBackoff * time.Duration(attempts)
			if backoff > maxReconnectBackoff {
				backoff = maxReconnectBackoff
			}
			slog.Warn("WebSocket client gave up, will restart after backoff",
				"component", "sprinkler", "org", sm.org, "attempt", attempts, "backoff", backoff, "error", err)

			select {
			case <-ctx.Done():
				return
			case <-sm.stopChan:
				return
			case <-time.After(backoff):
			}
		}
	}
}

// connectWebSocket establishes a WebSocket connection and blocks until the
// client stops.
func (sm *sprinklerMonitor) connectWebSocket(ctx context.Context) error {
	config := client.Config{
		ServerURL:    "wss://" + client.DefaultServerAddress + "/ws",
		Organization: sm.org,
		// TokenProvider rather than a static token so installation tokens
		// refresh across reconnects.
		TokenProvider: func() (string, error) {
			sm.bot.client.SetCurrentOrg(sm.org)
			token, err := sm.bot.client.Token(ctx)
			sm.bot.client.SetCurrentOrg("")
			if err != nil {
				return "", fmt.Errorf("failed to get token: %w", err)
			}
			return token, nil
		},
		EventTypes:     []string{"pull_request", "pull_request_review"},
		UserEventsOnly: false,
		Verbose:        false,
		NoReconnect:    false,
		OnConnect: func() {
			sm.mu.Lock()
			sm.isConnected = true
			sm.lastConnectedAt = time.Now()
			sm.mu.Unlock()
			slog.Info("WebSocket connected", "component", "sprinkler", "org", sm.org)
		},
		OnDisconnect: func(err error) {
			sm.mu.Lock()
			wasConnected := sm.isConnected
			sm.isConnected = false
			sm.mu.Unlock()
			if err != nil && !errors.Is(err, context.Canceled) && wasConnected {
				slog.Warn("WebSocket disconnected", "component", "sprinkler", "org", sm.org, "error", err)
			}
		},
		OnEvent: func(event client.Event) {
			sm.handleEvent(event)
		},
	}

	wsClient, err := client.New(config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	sm.mu.Lock()
	sm.client = wsClient
	sm.mu.Unlock()

	if err := wsClient.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("WebSocket client stopped with error", "component", "sprinkler", "org", sm.org, "error", err)
		return err
	}
	return nil
}

// handleEvent queues incoming PR and review events for processing.
func (sm *sprinklerMonitor) handleEvent(event client.Event) {
	if event.Type != "pull_request" && event.Type != "pull_request_review" {
		return
	}
	if event.URL == "" {
		slog.Warn("Received event with empty URL", "component", "sprinkler", "type", event.Type)
		return
	}

	// Dedupe bursts: the platform fans one logical change into several
	// deliveries within a short window.
	dedupKey := event.Type + " " + event.URL
	sm.mu.Lock()
	now := time.Now()
	if lastSeen, exists := sm.lastEventMap[dedupKey]; exists && now.Sub(lastSeen) < eventDedupWindow {
		sm.mu.Unlock()
		return
	}
	sm.lastEventMap[dedupKey] = now
	sm.lastEventAt = now

	if len(sm.lastEventMap) > eventMapMaxSize {
		cutoff := now.Add(-eventMapCleanupAge)
		for key, timestamp := range sm.lastEventMap {
			if timestamp.Before(cutoff) {
				delete(sm.lastEventMap, key)
			}
		}
	}
	sm.mu.Unlock()

	slog.Info("PR event received", "component", "sprinkler", "type", event.Type, "url", event.URL, "org", sm.org)

	select {
	case sm.eventChan <- prEvent{eventType: event.Type, url: event.URL}:
	default:
		slog.Warn("Event channel full, dropping event", "component", "sprinkler", "url", event.URL)
	}
}

// processEvents drains the event channel.
func (sm *sprinklerMonitor) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sm.stopChan:
			return
		case ev := <-sm.eventChan:
			sm.processEvent(ctx, ev)
		}
	}
}

// processEvent runs the approval pipeline for one event, with retries for
// transient failures. Retrying here is safe: the pipeline's side effects are
// idempotent.
func (sm *sprinklerMonitor) processEvent(ctx context.Context, ev prEvent) {
	startTime := time.Now()

	ref, err := parsePRURL(ev.url)
	if err != nil {
		slog.Warn("Failed to parse PR URL", "component", "sprinkler", "url", ev.url, "error", err)
		return
	}

	slog.Info("Processing PR event", "component", "sprinkler",
		"type", ev.eventType, "owner", ref.owner, "repo", ref.repo, "pr", ref.number)

	err = retry.Do(func() error {
		return sm.bot.processEvent(ctx, ev.eventType, ref)
	},
		retry.Attempts(processMaxRetries),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxDelay(processMaxDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retrying event processing", "component", "sprinkler",
				"attempt", n+1, "owner", ref.owner, "repo", ref.repo, "pr", ref.number, "error", err)
		}),
		retry.Context(ctx),
	)
	if err != nil {
		slog.Error("Failed to process event after retries", "component", "sprinkler",
			"owner", ref.owner, "repo", ref.repo, "pr", ref.number,
			"elapsed", time.Since(startTime).Round(time.Millisecond), "error", err)
		return
	}

	slog.Info("Processed PR event", "component", "sprinkler",
		"owner", ref.owner, "repo", ref.repo, "pr", ref.number,
		"elapsed", time.Since(startTime).Round(time.Millisecond))
}

// connected reports whether the WebSocket is currently up.
func (sm *sprinklerMonitor) connected() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.isConnected
}

// stop stops the sprinkler monitor.
func (sm *sprinklerMonitor) stop() {
	sm.mu.Lock()
	if !sm.isRunning {
		sm.mu.Unlock()
		return
	}
	sm.isRunning = false
	sm.isStopped = true
	sm.mu.Unlock()

	close(sm.stopChan)

	sm.mu.RLock()
	wsClient := sm.client
	sm.mu.RUnlock()
	if wsClient != nil {
		wsClient.Stop()
	}

	slog.Info("Event monitor stopped", "component", "sprinkler", "org", sm.org)
}

// prRef holds a parsed PR reference.
type prRef struct {
	owner  string
	repo   string
	number int
}

// parsePRURL extracts owner, repo, and PR number from a URL of the form
// https://github.com/owner/repo/pull/123.
func parsePRURL(url string) (prRef, error) {
	const minParts = 7
	parts := strings.Split(url, "/")
	if len(parts) < minParts || parts[2] != "github.com" {
		return prRef{}, fmt.Errorf("invalid GitHub PR URL format: %s", url)
	}

	var number int
	if _, err := fmt.Sscanf(parts[6], "%d", &number); err != nil {
		return prRef{}, fmt.Errorf("invalid PR number in URL: %s", url)
	}

	return prRef{owner: parts[3], repo: parts[4], number: number}, nil
}
