package owners

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/owners-approver/pkg/cache"
)

func TestLocalSource_Exists(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "OWNERS"), []byte("alice\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "pkg", "OWNERS"), 0o750); err != nil {
		t.Fatal(err)
	}

	src := LocalSource{Root: root}
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: "OWNERS", want: true},
		{name: "missing file", path: "a/OWNERS", want: false},
		{name: "directory with matching name", path: "pkg/OWNERS", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.Exists(context.Background(), tt.path)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLocalSource_ReadFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "OWNERS"), []byte("alice\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	src := LocalSource{Root: root}
	data, err := src.ReadFile(context.Background(), "OWNERS")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "alice\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	if _, err := src.ReadFile(context.Background(), "missing"); err == nil {
		t.Error("ReadFile() on a missing file should fail")
	}
}

// countingContentsAPI counts API hits so cache behavior is observable.
type countingContentsAPI struct {
	files  map[string][]byte
	exists int
	reads  int
	err    error
}

func (c *countingContentsAPI) FileExists(_ context.Context, _, _, _, path string) (bool, error) {
	c.exists++
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.files[path]
	return ok, nil
}

func (c *countingContentsAPI) FileContent(_ context.Context, _, _, _, path string) ([]byte, error) {
	c.reads++
	if c.err != nil {
		return nil, c.err
	}
	content, ok := c.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return content, nil
}

func TestRepoSource_CachesProbes(t *testing.T) {
	api := &countingContentsAPI{files: map[string][]byte{"OWNERS": []byte("alice\n")}}
	src := RepoSource{
		API:   api,
		Cache: cache.New(time.Minute),
		Owner: "acme",
		Repo:  "widgets",
		Ref:   "main",
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		exists, err := src.Exists(ctx, "OWNERS")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if !exists {
			t.Fatal("Exists() = false, want true")
		}
	}
	if api.exists != 1 {
		t.Errorf("API probe count = %d, want 1 (cached after first)", api.exists)
	}

	for i := 0; i < 3; i++ {
		data, err := src.ReadFile(ctx, "OWNERS")
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(data) != "alice\n" {
			t.Errorf("ReadFile() = %q", data)
		}
	}
	if api.reads != 1 {
		t.Errorf("API read count = %d, want 1 (cached after first)", api.reads)
	}
}

func TestRepoSource_NegativeProbesCached(t *testing.T) {
	api := &countingContentsAPI{files: map[string][]byte{}}
	src := RepoSource{
		API:   api,
		Cache: cache.New(time.Minute),
		Owner: "acme",
		Repo:  "widgets",
		Ref:   "main",
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		exists, err := src.Exists(ctx, "a/OWNERS")
		if err != nil {
			t.Fatalf("Exists() error = %v", err)
		}
		if exists {
			t.Fatal("Exists() = true, want false")
		}
	}
	if api.exists != 1 {
		t.Errorf("API probe count = %d, want 1 (absence cached too)", api.exists)
	}
}

func TestRepoSource_ErrorsNotCached(t *testing.T) {
	api := &countingContentsAPI{err: errors.New("rate limited")}
	src := RepoSource{
		API:   api,
		Cache: cache.New(time.Minute),
		Owner: "acme",
		Repo:  "widgets",
		Ref:   "main",
	}
	ctx := context.Background()

	if _, err := src.Exists(ctx, "OWNERS"); err == nil {
		t.Fatal("Exists() should surface API errors")
	}
	if _, err := src.Exists(ctx, "OWNERS"); err == nil {
		t.Fatal("Exists() should surface API errors")
	}
	if api.exists != 2 {
		t.Errorf("API probe count = %d, want 2 (errors are never cached)", api.exists)
	}
}

func TestRepoSource_NilCache(t *testing.T) {
	api := &countingContentsAPI{files: map[string][]byte{"OWNERS": []byte("alice\n")}}
	src := RepoSource{API: api, Owner: "acme", Repo: "widgets", Ref: "main"}

	exists, err := src.Exists(context.Background(), "OWNERS")
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v, want true, nil", exists, err)
	}
}
