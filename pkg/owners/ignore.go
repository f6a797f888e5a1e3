package owners

import (
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterIgnored drops changed files matching any of the ignore glob patterns.
// An invalid pattern is logged and skipped rather than failing the run.
func FilterIgnored(files, patterns []string) []string {
	if len(patterns) == 0 {
		return files
	}

	kept := make([]string, 0, len(files))
	for _, file := range files {
		if matchesAny(file, patterns) {
			slog.Debug("Ignoring changed file", "component", "owners", "file", file)
			continue
		}
		kept = append(kept, file)
	}
	return kept
}

func matchesAny(file string, patterns []string) bool {
	for _, pattern := range patterns {
		match, err := doublestar.Match(pattern, file)
		if err != nil {
			slog.Warn("Invalid ignore pattern, skipping",
				"component", "owners", "pattern", pattern, "error", err)
			continue
		}
		if match {
			return true
		}
	}
	return false
}
