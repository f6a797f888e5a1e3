package action

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// writePayload writes an event payload to a temp file and points
// GITHUB_EVENT_PATH at it.
func writePayload(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITHUB_EVENT_PATH", path)
}

func TestLoadEvent_PullRequest(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "pull_request")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	writePayload(t, `{
		"pull_request": {"number": 7, "user": {"login": "alice"}, "base": {"ref": "main"}},
		"sender": {"login": "alice"}
	}`)

	got, err := LoadEvent()
	if err != nil {
		t.Fatalf("LoadEvent() error = %v", err)
	}

	want := types.Event{
		Name:   "pull_request",
		Sender: "alice",
		PullRequest: types.PullRequest{
			Author:     "alice",
			Owner:      "acme",
			Repository: "widgets",
			BaseRef:    "main",
			Number:     7,
		},
	}
	if got != want {
		t.Errorf("LoadEvent() = %+v, want %+v", got, want)
	}
}

func TestLoadEvent_PullRequestReview(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "pull_request_review")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	writePayload(t, `{
		"pull_request": {"number": 7, "user": {"login": "alice"}, "base": {"ref": "main"}},
		"review": {"user": {"login": "bob"}, "state": "APPROVED"},
		"sender": {"login": "bob"}
	}`)

	got, err := LoadEvent()
	if err != nil {
		t.Fatalf("LoadEvent() error = %v", err)
	}
	if got.ReviewState != "approved" {
		t.Errorf("ReviewState = %q, want lowercase approved", got.ReviewState)
	}
	if got.Sender != "bob" {
		t.Errorf("Sender = %q, want bob", got.Sender)
	}
}

func TestLoadEvent_UnsupportedEvent(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "push")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")

	_, err := LoadEvent()
	var unsupported ErrUnsupportedEvent
	if !errors.As(err, &unsupported) {
		t.Fatalf("LoadEvent() error = %v, want ErrUnsupportedEvent", err)
	}
	if unsupported.Name != "push" {
		t.Errorf("unsupported event name = %q, want push", unsupported.Name)
	}
}

func TestLoadEvent_Errors(t *testing.T) {
	tests := []struct {
		name       string
		repository string
		payload    string
		wantErr    string
	}{
		{
			name:       "bad repository",
			repository: "acme",
			payload:    `{"pull_request": {"number": 7}}`,
			wantErr:    "invalid GITHUB_REPOSITORY",
		},
		{
			name:       "malformed payload",
			repository: "acme/widgets",
			payload:    "not json",
			wantErr:    "failed to decode event payload",
		},
		{
			name:       "payload without pull request",
			repository: "acme/widgets",
			payload:    `{"sender": {"login": "alice"}}`,
			wantErr:    "no pull request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITHUB_EVENT_NAME", "pull_request")
			t.Setenv("GITHUB_REPOSITORY", tt.repository)
			writePayload(t, tt.payload)

			_, err := LoadEvent()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadEvent() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEvent_MissingPayloadPath(t *testing.T) {
	t.Setenv("GITHUB_EVENT_NAME", "pull_request")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GITHUB_EVENT_PATH", "")

	_, err := LoadEvent()
	if err == nil || !strings.Contains(err.Error(), "GITHUB_EVENT_PATH") {
		t.Errorf("LoadEvent() error = %v, want missing GITHUB_EVENT_PATH", err)
	}
}

func TestAppendSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	t.Setenv("GITHUB_STEP_SUMMARY", path)

	AppendSummary("### first")
	AppendSummary("### second")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), "### first\n### second\n"; got != want {
		t.Errorf("summary file = %q, want %q", got, want)
	}
}

func TestAppendSummary_NoFileConfigured(t *testing.T) {
	t.Setenv("GITHUB_STEP_SUMMARY", "")
	AppendSummary("ignored") // must not panic or create anything
}
