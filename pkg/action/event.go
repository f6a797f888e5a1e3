package action

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// ErrUnsupportedEvent reports a trigger this system does not act on. The run
// logs it and exits cleanly without performing any mutation.
type ErrUnsupportedEvent struct {
	Name string
}

func (e ErrUnsupportedEvent) Error() string {
	return fmt.Sprintf("unsupported event %q: only pull_request, pull_request_target and pull_request_review are handled", e.Name)
}

// payload is the subset of the webhook event payload this system reads.
type payload struct {
	PullRequest struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		Number int `json:"number"`
	} `json:"pull_request"`
	Review struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		State string `json:"state"`
	} `json:"review"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// LoadEvent decodes the trigger event from GITHUB_EVENT_NAME, the payload
// file at GITHUB_EVENT_PATH, and GITHUB_REPOSITORY.
func LoadEvent() (types.Event, error) {
	name := os.Getenv("GITHUB_EVENT_NAME")
	switch name {
	case "pull_request", "pull_request_target", "pull_request_review":
	default:
		return types.Event{}, ErrUnsupportedEvent{Name: name}
	}

	owner, repo, err := splitRepository(os.Getenv("GITHUB_REPOSITORY"))
	if err != nil {
		return types.Event{}, err
	}

	eventPath := os.Getenv("GITHUB_EVENT_PATH")
	if eventPath == "" {
		return types.Event{}, fmt.Errorf("GITHUB_EVENT_PATH is not set")
	}
	raw, err := os.ReadFile(eventPath)
	if err != nil {
		return types.Event{}, fmt.Errorf("failed to read event payload: %w", err)
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Event{}, fmt.Errorf("failed to decode event payload: %w", err)
	}
	if p.PullRequest.Number == 0 {
		return types.Event{}, fmt.Errorf("event payload has no pull request")
	}

	return types.Event{
		Name:        name,
		Sender:      p.Sender.Login,
		ReviewState: strings.ToLower(p.Review.State),
		PullRequest: types.PullRequest{
			Owner:      owner,
			Repository: repo,
			Number:     p.PullRequest.Number,
			Author:     p.PullRequest.User.Login,
			BaseRef:    p.PullRequest.Base.Ref,
		},
	}, nil
}

// splitRepository parses the "owner/repo" form of GITHUB_REPOSITORY.
func splitRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GITHUB_REPOSITORY %q (expected owner/repo)", repository)
	}
	return parts[0], parts[1], nil
}
