// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package forge talks to the hosted-repository REST API (GitHub-shaped).
//
// It owns the repository URL parser, the paginated release/tag listing
// client, and the error taxonomy callers use to distinguish "repo does
// not exist" from "we ran out of API quota" from "GitHub is on fire".
package forge

import "time"

// RepoRef identifies a repository on the forge. It is created once by
// ParseRepoURL and passed through unmodified; namespaces are
// case-insensitive-but-preserving on the forge side, so no case folding
// happens here.
type RepoRef struct {
	Namespace string `json:"namespace"`
	Project   string `json:"project"`
}

// String returns the "namespace/project" slug used in API paths.
func (r RepoRef) String() string {
	return r.Namespace + "/" + r.Project
}

// ReleaseRecord is the wire shape of one published release as returned
// by the releases listing endpoint.
type ReleaseRecord struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	TagName     string    `json:"tag_name"`
	Body        string    `json:"body"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}

// CommitRef points at the commit a tag names.
type CommitRef struct {
	SHA string `json:"sha"`
	URL string `json:"url"`
}

// TagRecord is the wire shape of one tag from the tags listing endpoint.
// Tags carry no notes and no timestamp; the commit URL is followed to
// resolve a date.
type TagRecord struct {
	Name       string    `json:"name"`
	Commit     CommitRef `json:"commit"`
	ZipballURL string    `json:"zipball_url"`
}

// CommitDetail is the subset of the commit detail endpoint we care
// about: the committer and author dates.
type CommitDetail struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date time.Time `json:"date"`
		} `json:"author"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// CommitDate picks the committer date, falling back to the author date.
// Returns the zero time when neither is set.
func (c CommitDetail) CommitDate() time.Time {
	if !c.Commit.Committer.Date.IsZero() {
		return c.Commit.Committer.Date
	}
	return c.Commit.Author.Date
}
