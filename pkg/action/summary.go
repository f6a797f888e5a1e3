package action

import (
	"log/slog"
	"os"
)

// AppendSummary appends markdown to the workflow step summary when the runner
// provides one. Failures are logged, never fatal: the summary is informational.
func AppendSummary(markdown string) {
	path := os.Getenv("GITHUB_STEP_SUMMARY")
	if path == "" {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("Failed to open step summary file", "component", "action", "error", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close step summary file", "component", "action", "error", err)
		}
	}()

	if _, err := f.WriteString(markdown + "\n"); err != nil {
		slog.Warn("Failed to write step summary", "component", "action", "error", err)
	}
}
