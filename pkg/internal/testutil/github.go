// Package testutil provides mock implementations and testing utilities for
// the owners-approver project.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/codeGROOVE-dev/owners-approver/pkg/github"
	"github.com/codeGROOVE-dev/owners-approver/pkg/types"
)

// MockGitHubClient implements github.API for testing. It is a programmable
// mock: tests configure responses and inspect recorded mutation calls.
type MockGitHubClient struct {
	pullRequests       map[string]*types.PullRequest
	changedFiles       map[string][]string
	reviews            map[string][]types.Review
	requestedReviewers map[string][]string
	fileContents       map[string][]byte
	errors             map[string]error
	authenticatedUser  string

	requestReviewersCalls []RequestReviewersCall
	createReviewCalls     []CreateReviewCall
	dismissReviewCalls    []DismissReviewCall

	mu sync.RWMutex
}

// RequestReviewersCall records a call to RequestReviewers.
type RequestReviewersCall struct {
	Owner     string
	Repo      string
	Reviewers []string
	PRNumber  int
}

// CreateReviewCall records a call to CreateReview.
type CreateReviewCall struct {
	Owner    string
	Repo     string
	Event    string
	Body     string
	PRNumber int
}

// DismissReviewCall records a call to DismissReview.
type DismissReviewCall struct {
	Owner    string
	Repo     string
	Message  string
	ReviewID int64
	PRNumber int
}

// NewMockGitHubClient creates a new MockGitHubClient.
func NewMockGitHubClient() *MockGitHubClient {
	return &MockGitHubClient{
		pullRequests:       make(map[string]*types.PullRequest),
		changedFiles:       make(map[string][]string),
		reviews:            make(map[string][]types.Review),
		requestedReviewers: make(map[string][]string),
		fileContents:       make(map[string][]byte),
		errors:             make(map[string]error),
		authenticatedUser:  "owners-approver[bot]",
	}
}

func prKey(owner, repo string, prNumber int) string {
	return fmt.Sprintf("%s/%s#%d", owner, repo, prNumber)
}

// SetPullRequest configures the PR returned by PullRequest.
func (m *MockGitHubClient) SetPullRequest(pr *types.PullRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pullRequests[prKey(pr.Owner, pr.Repository, pr.Number)] = pr
}

// SetChangedFiles configures the changed files for a PR.
func (m *MockGitHubClient) SetChangedFiles(owner, repo string, prNumber int, files []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changedFiles[prKey(owner, repo, prNumber)] = files
}

// SetReviews configures the review history for a PR.
func (m *MockGitHubClient) SetReviews(owner, repo string, prNumber int, reviews []types.Review) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[prKey(owner, repo, prNumber)] = reviews
}

// SetRequestedReviewers configures the currently requested reviewers for a PR.
func (m *MockGitHubClient) SetRequestedReviewers(owner, repo string, prNumber int, reviewers []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestedReviewers[prKey(owner, repo, prNumber)] = reviewers
}

// SetFileContent configures repository file contents at a ref.
func (m *MockGitHubClient) SetFileContent(owner, repo, ref, path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fileContents[fmt.Sprintf("%s/%s@%s:%s", owner, repo, ref, path)] = content
}

// SetAuthenticatedUser configures the identity returned by AuthenticatedUser.
func (m *MockGitHubClient) SetAuthenticatedUser(login string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authenticatedUser = login
}

// SetError configures an error for a specific operation name.
func (m *MockGitHubClient) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[operation] = err
}

// PullRequest returns the configured PR.
func (m *MockGitHubClient) PullRequest(_ context.Context, owner, repo string, prNumber int) (*types.PullRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["PullRequest"]; err != nil {
		return nil, err
	}
	pr, ok := m.pullRequests[prKey(owner, repo, prNumber)]
	if !ok {
		return nil, fmt.Errorf("no such PR: %s", prKey(owner, repo, prNumber))
	}
	return pr, nil
}

// ChangedFiles returns the configured changed files.
func (m *MockGitHubClient) ChangedFiles(_ context.Context, owner, repo string, prNumber int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["ChangedFiles"]; err != nil {
		return nil, err
	}
	return m.changedFiles[prKey(owner, repo, prNumber)], nil
}

// Reviews returns the configured review history.
func (m *MockGitHubClient) Reviews(_ context.Context, owner, repo string, prNumber int) ([]types.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["Reviews"]; err != nil {
		return nil, err
	}
	return m.reviews[prKey(owner, repo, prNumber)], nil
}

// RequestedReviewers returns the configured requested reviewers.
func (m *MockGitHubClient) RequestedReviewers(_ context.Context, owner, repo string, prNumber int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["RequestedReviewers"]; err != nil {
		return nil, err
	}
	return m.requestedReviewers[prKey(owner, repo, prNumber)], nil
}

// RequestReviewers records the call and marks the reviewers as requested.
func (m *MockGitHubClient) RequestReviewers(_ context.Context, owner, repo string, prNumber int, reviewers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errors["RequestReviewers"]; err != nil {
		return err
	}
	m.requestReviewersCalls = append(m.requestReviewersCalls, RequestReviewersCall{
		Owner: owner, Repo: repo, PRNumber: prNumber, Reviewers: reviewers,
	})
	key := prKey(owner, repo, prNumber)
	m.requestedReviewers[key] = append(m.requestedReviewers[key], reviewers...)
	return nil
}

// CreateReview records the call.
func (m *MockGitHubClient) CreateReview(_ context.Context, owner, repo string, prNumber int, event, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errors["CreateReview"]; err != nil {
		return err
	}
	m.createReviewCalls = append(m.createReviewCalls, CreateReviewCall{
		Owner: owner, Repo: repo, PRNumber: prNumber, Event: event, Body: body,
	})
	return nil
}

// DismissReview records the call.
func (m *MockGitHubClient) DismissReview(_ context.Context, owner, repo string, prNumber int, reviewID int64, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.errors["DismissReview"]; err != nil {
		return err
	}
	m.dismissReviewCalls = append(m.dismissReviewCalls, DismissReviewCall{
		Owner: owner, Repo: repo, PRNumber: prNumber, ReviewID: reviewID, Message: message,
	})
	return nil
}

// FileExists reports whether a file was configured at the ref.
func (m *MockGitHubClient) FileExists(_ context.Context, owner, repo, ref, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["FileExists"]; err != nil {
		return false, err
	}
	_, ok := m.fileContents[fmt.Sprintf("%s/%s@%s:%s", owner, repo, ref, path)]
	return ok, nil
}

// FileContent returns configured file contents at the ref.
func (m *MockGitHubClient) FileContent(_ context.Context, owner, repo, ref, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["FileContent"]; err != nil {
		return nil, err
	}
	content, ok := m.fileContents[fmt.Sprintf("%s/%s@%s:%s", owner, repo, ref, path)]
	if !ok {
		return nil, fmt.Errorf("no such file: %s@%s:%s", repo, ref, path)
	}
	return content, nil
}

// AuthenticatedUser returns the configured identity.
func (m *MockGitHubClient) AuthenticatedUser(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.errors["AuthenticatedUser"]; err != nil {
		return "", err
	}
	return m.authenticatedUser, nil
}

// RequestReviewersCalls returns recorded RequestReviewers calls.
func (m *MockGitHubClient) RequestReviewersCalls() []RequestReviewersCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestReviewersCall(nil), m.requestReviewersCalls...)
}

// CreateReviewCalls returns recorded CreateReview calls.
func (m *MockGitHubClient) CreateReviewCalls() []CreateReviewCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]CreateReviewCall(nil), m.createReviewCalls...)
}

// DismissReviewCalls returns recorded DismissReview calls.
func (m *MockGitHubClient) DismissReviewCalls() []DismissReviewCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]DismissReviewCall(nil), m.dismissReviewCalls...)
}

// Compile-time check that the mock satisfies github.API.
var _ github.API = (*MockGitHubClient)(nil)
