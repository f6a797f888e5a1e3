package owners

import "sort"

// Map associates each reviewer identity with the set of changed files that
// identity owns. The pull request author is never a key. Rebuilt from scratch
// every run, never persisted.
type Map map[string]map[string]bool

// Build constructs the ownership map. For each changed file the governing
// reviewer set is the one declared in its nearest owners file, or the full
// fallback set when no file-specific resolution exists. The author is
// excluded as a self-reviewer. Iteration over locations and reviewers is in
// stable order, so identical inputs always yield identical maps.
//
// A file whose nearest owners file is empty or unreadable picks up no
// reviewers and can never be covered by an approval.
func Build(locations []Location, reviewersByPath map[string][]string, fallback []string, author string) Map {
	m := make(Map)
	for _, loc := range locations {
		governing := fallback
		if loc.Found {
			governing = reviewersByPath[loc.OwnersPath]
		}

		for _, reviewer := range governing {
			if reviewer == author {
				continue
			}
			if m[reviewer] == nil {
				m[reviewer] = make(map[string]bool)
			}
			m[reviewer][loc.File] = true
		}
	}
	return m
}

// Reviewers returns all reviewer identities in the map, sorted.
func (m Map) Reviewers() []string {
	reviewers := make([]string, 0, len(m))
	for r := range m {
		reviewers = append(reviewers, r)
	}
	sort.Strings(reviewers)
	return reviewers
}

// Covered returns the union of files owned by the given reviewers. Reviewers
// absent from the map contribute nothing.
func (m Map) Covered(reviewers []string) map[string]bool {
	covered := make(map[string]bool)
	for _, r := range reviewers {
		for file := range m[r] {
			covered[file] = true
		}
	}
	return covered
}

// OwnersOf returns the reviewers owning the given file, sorted. A file nobody
// owns returns nil.
func (m Map) OwnersOf(file string) []string {
	var reviewers []string
	for r, files := range m {
		if files[file] {
			reviewers = append(reviewers, r)
		}
	}
	sort.Strings(reviewers)
	return reviewers
}
