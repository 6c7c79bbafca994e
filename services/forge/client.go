// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the GitHub REST API root.
	DefaultBaseURL = "https://api.github.com"

	// apiVersion pins the REST API revision we were written against.
	apiVersion = "2022-11-28"

	// MaxPerPage is the largest page size the forge allows on listing
	// endpoints. The aggregator always asks for this.
	MaxPerPage = 100

	// commitFetchRate paces secondary commit-detail fetches so a tag
	// fallback for a busy repo does not burn through unauthenticated
	// quota in one burst.
	commitFetchRate = 20 // requests per second
)

// HTTPClient interface allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues authenticated, version-pinned requests against the
// forge REST API. The zero value is not usable; construct with
// NewClient.
//
// The bearer token is optional. Without one the forge still answers,
// just with a much smaller quota; the token is passed through as-is
// and never logged.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	token      string
	limiter    *rate.Limiter
}

// NewClient builds a Client against baseURL (DefaultBaseURL when
// empty). The token may be empty.
func NewClient(baseURL, token string, httpClient HTTPClient) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(commitFetchRate), commitFetchRate),
	}
}

// ListReleases fetches one page of published releases. The second
// return value reports whether a further page exists, derived from the
// Link response header.
func (c *Client) ListReleases(ctx context.Context, ref RepoRef, page, perPage int) ([]ReleaseRecord, bool, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d&page=%d",
		c.baseURL, ref.Namespace, ref.Project, perPage, page)

	var releases []ReleaseRecord
	hasNext, err := c.getJSON(ctx, url, &releases)
	if err != nil {
		return nil, false, err
	}
	return releases, hasNext, nil
}

// ListTags fetches one page of tags. Same pagination contract as
// ListReleases.
func (c *Client) ListTags(ctx context.Context, ref RepoRef, page, perPage int) ([]TagRecord, bool, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=%d&page=%d",
		c.baseURL, ref.Namespace, ref.Project, perPage, page)

	var tags []TagRecord
	hasNext, err := c.getJSON(ctx, url, &tags)
	if err != nil {
		return nil, false, err
	}
	return tags, hasNext, nil
}

// GetCommit fetches the commit detail record at the URL embedded in a
// tag listing. Rate limited client-side because these fan out per tag.
func (c *Client) GetCommit(ctx context.Context, commitURL string) (CommitDetail, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return CommitDetail{}, err
	}
	var detail CommitDetail
	if _, err := c.getJSON(ctx, commitURL, &detail); err != nil {
		return CommitDetail{}, err
	}
	return detail, nil
}

// getJSON performs one GET with the forge headers set, classifies the
// status, and decodes the body into out. Returns the has-next-page
// signal from the Link header.
func (c *Client) getJSON(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create forge request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("forge API call failed: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		slog.Debug("Forge returned non-success status", "url", url, "status", resp.Status)
		return false, err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode forge response: %w", err)
	}
	return hasNextPage(resp.Header.Get("Link")), nil
}

// classifyStatus maps a non-2xx response onto the error taxonomy:
// 404 -> ErrRepoNotFound, 403 with zero remaining quota ->
// *RateLimitError, anything else non-2xx -> *UpstreamError.
func classifyStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrRepoNotFound
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return &RateLimitError{Remaining: "0"}
	default:
		return &UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
}

// hasNextPage reports whether a Link header advertises a further page.
// GitHub emits e.g. `<...&page=2>; rel="next", <...&page=5>; rel="last"`.
func hasNextPage(linkHeader string) bool {
	return strings.Contains(linkHeader, `rel="next"`)
}
