// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package changelog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/ReleaseScout/services/forge"
)

const (
	// maxNormalizedTags bounds the number of secondary commit-detail
	// fetches in the tag fallback. Older tags are silently dropped.
	maxNormalizedTags = 50

	// maxCommitFetchWorkers bounds the fan-out of those fetches.
	maxCommitFetchWorkers = 8

	// tagPlaceholderPrefix starts every synthesized body for a
	// tag-derived release. The meaningful-notes check keys on it to
	// discount placeholder content.
	tagPlaceholderPrefix = "No release notes were published for tag "
)

// tagPlaceholder is the fixed body synthesized for a tag-derived
// release.
func tagPlaceholder(tagName string) string {
	return tagPlaceholderPrefix + tagName + "."
}

// isTagPlaceholder recognizes a body synthesized by tagPlaceholder.
func isTagPlaceholder(body string) bool {
	return strings.HasPrefix(body, tagPlaceholderPrefix)
}

// normalizeTags converts raw tag records into release-shaped records,
// resolving a timestamp per tag from its commit detail endpoint.
//
// Only the maxNormalizedTags most recently listed tags are considered.
// The commit fetches run in parallel; a failed or malformed fetch
// degrades that one tag's date to time.Now() rather than aborting the
// batch, so this never returns an error.
func normalizeTags(ctx context.Context, client CommitFetcher, tags []forge.TagRecord) []Release {
	if len(tags) > maxNormalizedTags {
		tags = tags[:maxNormalizedTags]
	}

	releases := make([]Release, len(tags))
	var g errgroup.Group
	g.SetLimit(maxCommitFetchWorkers)

	for i, tag := range tags {
		g.Go(func() error {
			releases[i] = normalizeTag(ctx, client, tag)
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	return releases
}

// normalizeTag builds one Release from one tag record.
func normalizeTag(ctx context.Context, client CommitFetcher, tag forge.TagRecord) Release {
	publishedAt := time.Now()
	if tag.Commit.URL != "" {
		detail, err := client.GetCommit(ctx, tag.Commit.URL)
		if err != nil {
			slog.Warn("Commit detail fetch failed, using current time",
				"tag", tag.Name, "error", err)
		} else if d := detail.CommitDate(); !d.IsZero() {
			publishedAt = d
		}
	}

	return Release{
		ID:          synthesizeID(tag.Commit.SHA),
		DisplayName: tag.Name,
		VersionTag:  tag.Name,
		PublishedAt: publishedAt,
		Body:        tagPlaceholder(tag.Name),
		Prerelease:  looksPrerelease(tag.Name),
		DetailURL:   strings.Replace(tag.ZipballURL, "/zipball/", "/releases/tag/", 1),
		// Breaking stays false: there is no textual body to infer from.
	}
}

// synthesizeID derives a batch-local id from the first 8 hex characters
// of the commit hash, falling back to a random integer when the hash is
// short or unparsable. Uniqueness across a batch is plausible, not
// guaranteed.
func synthesizeID(sha string) int64 {
	if len(sha) >= 8 {
		if id, err := strconv.ParseInt(sha[:8], 16, 64); err == nil {
			return id
		}
	}
	return int64(uuid.New().ID())
}

// looksPrerelease is a case-sensitive substring heuristic over the tag
// name; tags carry no prerelease flag of their own.
func looksPrerelease(tagName string) bool {
	return strings.Contains(tagName, "alpha") ||
		strings.Contains(tagName, "beta") ||
		strings.Contains(tagName, "rc")
}
