package owners

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Read loads each owners file once and returns the reviewer identities it
// declares, keyed by path. Duplicate paths are collapsed before reading. An
// unreadable file is logged and skipped; it contributes no reviewers but
// never fails the run.
func Read(ctx context.Context, src Source, paths []string) map[string][]string {
	byPath := make(map[string][]string, len(paths))
	for _, p := range paths {
		if _, ok := byPath[p]; ok {
			continue
		}

		content, err := src.ReadFile(ctx, p)
		if err != nil {
			slog.Warn("Failed to read owners file, skipping",
				"component", "owners", "path", p, "error", err)
			continue
		}
		byPath[p] = parseReviewers(content)
	}
	return byPath
}

// parseReviewers splits owners-file content into reviewer identities: one per
// line, surrounding whitespace trimmed, blank lines discarded, duplicates
// collapsed. The result is sorted.
func parseReviewers(content []byte) []string {
	seen := make(map[string]bool)
	var reviewers []string
	for _, line := range strings.Split(string(content), "\n") {
		identity := strings.TrimSpace(line)
		if identity == "" || seen[identity] {
			continue
		}
		seen[identity] = true
		reviewers = append(reviewers, identity)
	}
	sort.Strings(reviewers)
	return reviewers
}

// Merge returns the deduplicated union of reviewers across all owners files,
// sorted. The result is independent of file read order.
func Merge(byPath map[string][]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, reviewers := range byPath {
		for _, r := range reviewers {
			if seen[r] {
				continue
			}
			seen[r] = true
			merged = append(merged, r)
		}
	}
	sort.Strings(merged)
	return merged
}
