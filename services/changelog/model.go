// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package changelog is the release aggregation and breaking-change
// inference pipeline.
//
// It pulls the complete paginated release history for a repository,
// falls back to tags when a project never publishes releases, marks
// each entry as breaking or not from its free-text notes, slices the
// history into an inclusive version range, and flattens the slice into
// a single text document for the upgrade-report summarizer.
//
// Everything here is a pure function of its inputs plus the live forge
// state; nothing is cached between calls.
package changelog

import "time"

// Release is the canonical record both real releases and normalized
// tags are reduced to before anything downstream sees them.
type Release struct {
	// ID is unique within one fetch batch. For tag-derived releases it
	// is synthesized from the commit hash and uniqueness is plausible,
	// not guaranteed.
	ID int64 `json:"id"`

	// DisplayName is the human label; may equal VersionTag.
	DisplayName string `json:"display_name"`

	// VersionTag is the immutable version identifier and the join key
	// for range selection. Unique within one aggregation result.
	VersionTag string `json:"version_tag"`

	// PublishedAt is the sole ordering key.
	PublishedAt time.Time `json:"published_at"`

	// Body holds the free-text notes, possibly empty.
	Body string `json:"body"`

	Draft      bool `json:"draft"`
	Prerelease bool `json:"prerelease"`

	// DetailURL links to the human-viewable release page.
	DetailURL string `json:"detail_url"`

	// Breaking is derived, never trusted from upstream; the classifier
	// recomputes it on every aggregation.
	Breaking bool `json:"breaking"`
}

// AggregationResult is what Aggregator.Aggregate hands back: the full
// sorted history plus two signals callers use to set expectations
// before asking an LLM to summarize placeholder bodies.
type AggregationResult struct {
	// Releases is sorted descending by PublishedAt.
	Releases []Release `json:"releases"`

	// HasMeaningfulNotes is true iff at least one body is non-empty,
	// is not the synthesized tag placeholder, and is at least 20
	// characters after trimming.
	HasMeaningfulNotes bool `json:"has_meaningful_notes"`

	// SourcedFromTags is true iff the repository had zero releases and
	// the pipeline fell back to the tag listing.
	SourcedFromTags bool `json:"sourced_from_tags"`
}
