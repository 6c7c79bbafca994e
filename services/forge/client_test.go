// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the forge REST client.

package forge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

// --- Mock HTTP Client ---

type MockHTTPClient struct {
	DoFunc   func(req *http.Request) (*http.Response, error)
	Requests []*http.Request
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.DoFunc(req)
}

func jsonResponse(status int, body string, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func testRef() RepoRef {
	return RepoRef{Namespace: "facebook", Project: "react"}
}

// --- Header and URL construction ---

func TestListReleases_RequestShape(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `[]`, nil), nil
		},
	}
	client := NewClient("", "secret-token", mock)

	_, _, err := client.ListReleases(context.Background(), testRef(), 2, 100)
	if err != nil {
		t.Fatalf("ListReleases returned error: %v", err)
	}

	req := mock.Requests[0]
	wantURL := "https://api.github.com/repos/facebook/react/releases?per_page=100&page=2"
	if req.URL.String() != wantURL {
		t.Errorf("request URL = %s, want %s", req.URL, wantURL)
	}
	if got := req.Header.Get("Accept"); got != "application/vnd.github+json" {
		t.Errorf("Accept header = %q", got)
	}
	if got := req.Header.Get("X-GitHub-Api-Version"); got == "" {
		t.Error("X-GitHub-Api-Version header not set")
	}
	if got := req.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("Authorization header = %q", got)
	}
}

func TestListReleases_NoTokenNoAuthHeader(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `[]`, nil), nil
		},
	}
	client := NewClient("", "", mock)

	if _, _, err := client.ListReleases(context.Background(), testRef(), 1, 100); err != nil {
		t.Fatalf("ListReleases returned error: %v", err)
	}
	if got := mock.Requests[0].Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization header set without token: %q", got)
	}
}

// --- Pagination signal ---

func TestListReleases_HasNextFromLinkHeader(t *testing.T) {
	tests := []struct {
		name     string
		link     string
		wantNext bool
	}{
		{"next present", `<https://api.github.com/repos/facebook/react/releases?per_page=100&page=2>; rel="next", <https://api.github.com/repos/facebook/react/releases?per_page=100&page=3>; rel="last"`, true},
		{"only prev and last", `<https://api.github.com/x?page=1>; rel="prev", <https://api.github.com/x?page=2>; rel="last"`, false},
		{"no header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockHTTPClient{
				DoFunc: func(req *http.Request) (*http.Response, error) {
					return jsonResponse(200, `[]`, map[string]string{"Link": tt.link}), nil
				},
			}
			client := NewClient("", "", mock)

			_, hasNext, err := client.ListReleases(context.Background(), testRef(), 1, 100)
			if err != nil {
				t.Fatalf("ListReleases returned error: %v", err)
			}
			if hasNext != tt.wantNext {
				t.Errorf("hasNext = %v, want %v", hasNext, tt.wantNext)
			}
		})
	}
}

// --- Decoding ---

func TestListReleases_DecodesRecords(t *testing.T) {
	body := `[{"id": 42, "name": "v1.0 Stable", "tag_name": "v1.0.0",
		"body": "Notes", "draft": false, "prerelease": true,
		"published_at": "2024-06-01T12:00:00Z",
		"html_url": "https://github.com/facebook/react/releases/tag/v1.0.0"}]`
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, body, nil), nil
		},
	}
	client := NewClient("", "", mock)

	releases, _, err := client.ListReleases(context.Background(), testRef(), 1, 100)
	if err != nil {
		t.Fatalf("ListReleases returned error: %v", err)
	}
	if len(releases) != 1 {
		t.Fatalf("got %d releases, want 1", len(releases))
	}
	r := releases[0]
	if r.ID != 42 || r.TagName != "v1.0.0" || r.Name != "v1.0 Stable" || !r.Prerelease {
		t.Errorf("unexpected record: %+v", r)
	}
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if !r.PublishedAt.Equal(want) {
		t.Errorf("PublishedAt = %v, want %v", r.PublishedAt, want)
	}
}

func TestListTags_DecodesCommitRef(t *testing.T) {
	body := `[{"name": "v0.1.0",
		"commit": {"sha": "abc123def456", "url": "https://api.github.com/repos/facebook/react/commits/abc123def456"},
		"zipball_url": "https://api.github.com/repos/facebook/react/zipball/v0.1.0"}]`
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, body, nil), nil
		},
	}
	client := NewClient("", "", mock)

	tags, _, err := client.ListTags(context.Background(), testRef(), 1, 100)
	if err != nil {
		t.Fatalf("ListTags returned error: %v", err)
	}
	if len(tags) != 1 || tags[0].Commit.SHA != "abc123def456" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
}

// --- Error taxonomy ---

func TestListReleases_NotFound(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(404, `{"message": "Not Found"}`, nil), nil
		},
	}
	client := NewClient("", "", mock)

	_, _, err := client.ListReleases(context.Background(), testRef(), 1, 100)
	if !errors.Is(err, ErrRepoNotFound) {
		t.Errorf("error = %v, want ErrRepoNotFound", err)
	}
}

func TestListReleases_RateLimited(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(403, `{"message": "API rate limit exceeded"}`,
				map[string]string{"X-RateLimit-Remaining": "0"}), nil
		},
	}
	client := NewClient("", "", mock)

	_, _, err := client.ListReleases(context.Background(), testRef(), 1, 100)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if !strings.Contains(rateErr.Error(), "token") {
		t.Errorf("rate limit message should mention configuring a token, got %q", rateErr.Error())
	}
}

func TestListReleases_ForbiddenWithQuotaLeftIsUpstream(t *testing.T) {
	// 403 without an exhausted quota header is not a rate limit.
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(403, `{"message": "Forbidden"}`,
				map[string]string{"X-RateLimit-Remaining": "8"}), nil
		},
	}
	client := NewClient("", "", mock)

	_, _, err := client.ListReleases(context.Background(), testRef(), 1, 100)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upErr.StatusCode != 403 {
		t.Errorf("StatusCode = %d, want 403", upErr.StatusCode)
	}
}

func TestListReleases_ServerError(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(502, "", nil), nil
		},
	}
	client := NewClient("", "", mock)

	_, _, err := client.ListReleases(context.Background(), testRef(), 1, 100)
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upErr.StatusCode != 502 {
		t.Errorf("StatusCode = %d, want 502", upErr.StatusCode)
	}
}

func TestListReleases_TransportError(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}
	client := NewClient("", "", mock)

	_, _, err := client.ListReleases(context.Background(), testRef(), 1, 100)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error = %v, want wrapped transport error", err)
	}
}

// --- Commit detail ---

func TestGetCommit_Dates(t *testing.T) {
	body := `{"sha": "abc123",
		"commit": {
			"author": {"date": "2024-01-01T00:00:00Z"},
			"committer": {"date": "2024-01-02T00:00:00Z"}}}`
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, body, nil), nil
		},
	}
	client := NewClient("", "", mock)

	detail, err := client.GetCommit(context.Background(), "https://api.github.com/repos/x/y/commits/abc123")
	if err != nil {
		t.Fatalf("GetCommit returned error: %v", err)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !detail.CommitDate().Equal(want) {
		t.Errorf("CommitDate = %v, want committer date %v", detail.CommitDate(), want)
	}
}

func TestCommitDetail_AuthorDateFallback(t *testing.T) {
	var detail CommitDetail
	detail.Commit.Author.Date = time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC)

	if !detail.CommitDate().Equal(detail.Commit.Author.Date) {
		t.Errorf("CommitDate = %v, want author date", detail.CommitDate())
	}
}

func TestCommitDetail_ZeroWhenNoDates(t *testing.T) {
	var detail CommitDetail
	if !detail.CommitDate().IsZero() {
		t.Errorf("CommitDate = %v, want zero time", detail.CommitDate())
	}
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	mock := &MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `[]`, nil), nil
		},
	}
	client := NewClient("https://ghe.example.com/api/v3/", "", mock)

	if _, _, err := client.ListTags(context.Background(), testRef(), 1, 50); err != nil {
		t.Fatalf("ListTags returned error: %v", err)
	}
	got := mock.Requests[0].URL.String()
	want := "https://ghe.example.com/api/v3/repos/facebook/react/tags?per_page=50&page=1"
	if got != want {
		t.Errorf("request URL = %s, want %s", got, want)
	}
}
