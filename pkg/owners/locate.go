package owners

import (
	"context"
	"log/slog"
	"path"
	"sync"
)

// Locator finds the nearest owners-declaration file for changed files by
// walking ancestor directories toward the repository root.
type Locator struct {
	Source   Source
	Filename string // owners filename checked at every directory level, e.g. "OWNERS"
}

// Location is the result of resolving one changed file.
type Location struct {
	File       string // the changed file, repository-relative
	OwnersPath string // nearest owners file, empty when none was found
	Found      bool
}

// Locate walks upward from the changed file's directory and returns the first
// directory level that contains the owners filename. The walk is bounded by
// the repository root. Probe failures other than "not found" are logged and
// treated as absent so that one unreadable directory never aborts the run.
func (l Locator) Locate(ctx context.Context, changedFile string) (string, bool) {
	dir := path.Dir(changedFile)
	for {
		candidate := path.Join(dir, l.Filename)
		exists, err := l.Source.Exists(ctx, candidate)
		switch {
		case err != nil:
			slog.Warn("Owners file probe failed, treating as absent",
				"component", "owners", "file", changedFile, "path", candidate, "error", err)
		case exists:
			return candidate, true
		}

		if dir == "." || dir == "/" {
			return "", false
		}
		dir = path.Dir(dir)
	}
}

// LocateAll resolves every changed file independently. Each resolution shares
// no mutable state with the others, so they fan out in parallel; results land
// in an index-addressed slice and are folded by the caller after the join.
func (l Locator) LocateAll(ctx context.Context, changedFiles []string) []Location {
	results := make([]Location, len(changedFiles))

	var wg sync.WaitGroup
	for i, file := range changedFiles {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			ownersPath, found := l.Locate(ctx, file)
			results[i] = Location{File: file, OwnersPath: ownersPath, Found: found}
		}(i, file)
	}
	wg.Wait()

	return results
}

// Located returns the distinct owners-file paths found across all locations,
// in first-seen order.
func Located(locations []Location) []string {
	seen := make(map[string]bool, len(locations))
	var paths []string
	for _, loc := range locations {
		if !loc.Found || seen[loc.OwnersPath] {
			continue
		}
		seen[loc.OwnersPath] = true
		paths = append(paths, loc.OwnersPath)
	}
	return paths
}
