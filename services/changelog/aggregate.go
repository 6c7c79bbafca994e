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
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/AleutianAI/ReleaseScout/services/forge"
)

// minMeaningfulNoteLen is the trimmed body length, in characters, below
// which notes are treated as noise for the HasMeaningfulNotes signal.
const minMeaningfulNoteLen = 20

// ReleaseLister lists release and tag pages. Satisfied by *forge.Client.
type ReleaseLister interface {
	ListReleases(ctx context.Context, ref forge.RepoRef, page, perPage int) ([]forge.ReleaseRecord, bool, error)
	ListTags(ctx context.Context, ref forge.RepoRef, page, perPage int) ([]forge.TagRecord, bool, error)
}

// CommitFetcher resolves a commit detail URL. Satisfied by *forge.Client.
type CommitFetcher interface {
	GetCommit(ctx context.Context, commitURL string) (forge.CommitDetail, error)
}

// ForgeAPI is the full surface the aggregator needs from the forge.
type ForgeAPI interface {
	ReleaseLister
	CommitFetcher
}

// Aggregator drives the forge client, the tag normalizer, and the
// breaking-change classifier to produce a complete annotated release
// history for one repository.
type Aggregator struct {
	client ForgeAPI
}

// NewAggregator wires an Aggregator to a forge client.
func NewAggregator(client ForgeAPI) *Aggregator {
	return &Aggregator{client: client}
}

// Aggregate is the pipeline entry point.
//
// It pages through the releases listing until exhausted. A repository
// with zero releases falls back entirely to the tag listing (capped and
// normalized, SourcedFromTags=true). A repository with releases gets
// them sorted newest-first, classified, and annotated with the
// meaningful-notes signal.
//
// A fatal forge error in either phase aborts the whole aggregation and
// propagates the forge error taxonomy unchanged; the tag fallback is
// only attempted after a releases phase that succeeded with zero
// results.
func (a *Aggregator) Aggregate(ctx context.Context, ref forge.RepoRef) (AggregationResult, error) {
	records, err := a.fetchAllReleases(ctx, ref)
	if err != nil {
		return AggregationResult{}, err
	}

	if len(records) == 0 {
		slog.Info("Repository has no releases, falling back to tags", "repo", ref.String())
		return a.aggregateFromTags(ctx, ref)
	}

	releases := make([]Release, 0, len(records))
	for _, rec := range records {
		releases = append(releases, Release{
			ID:          rec.ID,
			DisplayName: rec.Name,
			VersionTag:  rec.TagName,
			PublishedAt: rec.PublishedAt,
			Body:        rec.Body,
			Draft:       rec.Draft,
			Prerelease:  rec.Prerelease,
			DetailURL:   rec.HTMLURL,
			Breaking:    IsBreaking(rec.Body),
		})
	}
	sortByPublishedDesc(releases)

	slog.Info("Aggregated release history",
		"repo", ref.String(), "releases", len(releases))

	return AggregationResult{
		Releases:           releases,
		HasMeaningfulNotes: hasMeaningfulNotes(releases),
		SourcedFromTags:    false,
	}, nil
}

// fetchAllReleases pages sequentially through the releases endpoint.
// Page N+1 is never requested before page N's pagination header is
// known, since that header is the continuation signal.
func (a *Aggregator) fetchAllReleases(ctx context.Context, ref forge.RepoRef) ([]forge.ReleaseRecord, error) {
	var all []forge.ReleaseRecord
	for page := 1; ; page++ {
		batch, hasNext, err := a.client.ListReleases(ctx, ref, page, forge.MaxPerPage)
		if err != nil {
			return nil, fmt.Errorf("listing releases page %d: %w", page, err)
		}
		all = append(all, batch...)
		if !hasNext || len(batch) == 0 {
			return all, nil
		}
	}
}

// aggregateFromTags is the tags-only path: page through the tag
// listing, normalize the newest tags into release-shaped records, and
// return them sorted. Tag-derived bodies are placeholders, so the
// meaningful-notes signal is always false here.
func (a *Aggregator) aggregateFromTags(ctx context.Context, ref forge.RepoRef) (AggregationResult, error) {
	var tags []forge.TagRecord
	for page := 1; ; page++ {
		batch, hasNext, err := a.client.ListTags(ctx, ref, page, forge.MaxPerPage)
		if err != nil {
			return AggregationResult{}, fmt.Errorf("listing tags page %d: %w", page, err)
		}
		tags = append(tags, batch...)
		if !hasNext || len(batch) == 0 {
			break
		}
	}

	releases := normalizeTags(ctx, a.client, tags)
	sortByPublishedDesc(releases)

	slog.Info("Aggregated tag history",
		"repo", ref.String(), "tags", len(tags), "normalized", len(releases))

	return AggregationResult{
		Releases:           releases,
		HasMeaningfulNotes: hasMeaningfulNotes(releases),
		SourcedFromTags:    true,
	}, nil
}

// sortByPublishedDesc orders newest-first. Stable so same-timestamp
// entries keep their arrival order.
func sortByPublishedDesc(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].PublishedAt.After(releases[j].PublishedAt)
	})
}

// hasMeaningfulNotes reports whether any body is worth summarizing:
// non-empty, not a synthesized tag placeholder, and at least
// minMeaningfulNoteLen characters after trimming.
func hasMeaningfulNotes(releases []Release) bool {
	for _, r := range releases {
		body := strings.TrimSpace(r.Body)
		if body == "" || isTagPlaceholder(r.Body) {
			continue
		}
		if utf8.RuneCountInString(body) >= minMeaningfulNoteLen {
			return true
		}
	}
	return false
}
