// Package action loads GitHub Actions inputs and event payloads from the
// environment conventions the runner provides (INPUT_* variables, the event
// payload file, and the step summary file).
package action

import (
	"fmt"
	"os"
	"strings"
)

// Inputs holds the recognized action configuration.
type Inputs struct {
	// Token is the credential for GitHub API access.
	Token string
	// Source is the filename treated as the owners-declaration file,
	// checked at every directory level.
	Source string
	// IgnoreFiles are glob patterns; matching changed files are excluded
	// before ownership resolution. May be empty.
	IgnoreFiles []string
}

// LoadInputs reads action inputs from INPUT_* environment variables, the way
// the Actions runner exposes them.
func LoadInputs() (Inputs, error) {
	token := os.Getenv("INPUT_TOKEN")
	if token == "" {
		return Inputs{}, fmt.Errorf("input %q is required", "token")
	}
	source := os.Getenv("INPUT_SOURCE")
	if source == "" {
		return Inputs{}, fmt.Errorf("input %q is required", "source")
	}

	return Inputs{
		Token:       token,
		Source:      source,
		IgnoreFiles: splitPatterns(os.Getenv("INPUT_IGNORE_FILES")),
	}, nil
}

// splitPatterns parses the newline-separated ignore_files input.
func splitPatterns(raw string) []string {
	var patterns []string
	for _, line := range strings.Split(raw, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
