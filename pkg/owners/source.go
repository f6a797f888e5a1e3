// Package owners resolves the nearest owners-declaration file for each
// changed file in a pull request and builds the reviewer ownership map that
// approval decisions are made from.
package owners

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/codeGROOVE-dev/owners-approver/pkg/cache"
)

// Source abstracts where owners-declaration files are probed and read from.
// Paths are repository-relative and slash-separated, matching the filenames
// reported by the GitHub pull request files API.
type Source interface {
	// Exists reports whether a regular file exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
	// ReadFile returns the full contents of the file at the given path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// LocalSource reads owners files from a checked-out workspace on disk.
// Root is the checkout directory (GITHUB_WORKSPACE in an Action run) and
// doubles as the upward-walk boundary: nothing outside it is ever probed.
type LocalSource struct {
	Root string
}

// Exists reports whether path names a regular file under the workspace root.
func (s LocalSource) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(filepath.Join(s.Root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// ReadFile reads a file under the workspace root.
func (s LocalSource) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(path)))
}

// ContentsAPI is the subset of the GitHub client needed to probe and read
// owners files at a ref without a local checkout.
type ContentsAPI interface {
	FileExists(ctx context.Context, owner, repo, ref, path string) (bool, error)
	FileContent(ctx context.Context, owner, repo, ref, path string) ([]byte, error)
}

// RepoSource reads owners files through the GitHub Contents API at a fixed
// ref (a PR's base branch). Used by the bot, which has no checkout. Probe and
// read results are cached per path since the locator re-probes shared
// ancestor directories across changed files.
type RepoSource struct {
	API   ContentsAPI
	Cache *cache.Cache
	Owner string
	Repo  string
	Ref   string
}

// Exists reports whether a file exists at the ref, caching the answer.
func (s RepoSource) Exists(ctx context.Context, path string) (bool, error) {
	key := fmt.Sprintf("exists:%s/%s@%s:%s", s.Owner, s.Repo, s.Ref, path)
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			if exists, ok := v.(bool); ok {
				return exists, nil
			}
		}
	}

	exists, err := s.API.FileExists(ctx, s.Owner, s.Repo, s.Ref, path)
	if err != nil {
		return false, err
	}
	if s.Cache != nil {
		s.Cache.Set(key, exists)
	}
	return exists, nil
}

// ReadFile fetches file contents at the ref, caching the answer.
func (s RepoSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	key := fmt.Sprintf("content:%s/%s@%s:%s", s.Owner, s.Repo, s.Ref, path)
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			if content, ok := v.([]byte); ok {
				return content, nil
			}
		}
	}

	content, err := s.API.FileContent(ctx, s.Owner, s.Repo, s.Ref, path)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(key, content)
	}
	return content, nil
}
