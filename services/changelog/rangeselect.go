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
	"fmt"
	"strings"
)

// EmptyChangelog is the sentinel Assemble returns for an empty slice.
const EmptyChangelog = "No releases selected."

// changelogSeparator joins assembled entries.
const changelogSeparator = "\n\n---\n\n"

// noNotesPlaceholder stands in for an empty body in assembled output.
const noNotesPlaceholder = "_No release notes provided._"

// SelectRange returns the inclusive contiguous slice of releases
// between fromTag and toTag, newest-first.
//
// The pair is order-independent: either tag may be the chronologically
// newer one. The input is defensively re-sorted by PublishedAt
// descending rather than trusting the caller. If either tag has no
// exact VersionTag match the result is empty; that is a silent
// no-match, not an error, because callers only pass tags they took
// from the same list.
func SelectRange(releases []Release, fromTag, toTag string) []Release {
	sorted := make([]Release, len(releases))
	copy(sorted, releases)
	sortByPublishedDesc(sorted)

	fromIdx, toIdx := -1, -1
	for i, r := range sorted {
		if r.VersionTag == fromTag {
			fromIdx = i
		}
		if r.VersionTag == toTag {
			toIdx = i
		}
	}
	if fromIdx == -1 || toIdx == -1 {
		return []Release{}
	}

	lo, hi := fromIdx, toIdx
	if lo > hi {
		lo, hi = hi, lo
	}
	return sorted[lo : hi+1]
}

// Assemble flattens a slice of releases into one human-readable
// markdown document, preserving input order. The caller decides
// presentation order; SelectRange output is newest-first.
func Assemble(releases []Release) string {
	if len(releases) == 0 {
		return EmptyChangelog
	}

	entries := make([]string, 0, len(releases))
	for _, r := range releases {
		name := r.DisplayName
		if name == "" {
			name = r.VersionTag
		}
		body := r.Body
		if strings.TrimSpace(body) == "" {
			body = noNotesPlaceholder
		}
		entries = append(entries, fmt.Sprintf("## %s (%s)\n\n%s", name, r.VersionTag, body))
	}
	return strings.Join(entries, changelogSeparator)
}
