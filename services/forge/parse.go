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
	"fmt"
	"net/url"
	"strings"

	"github.com/AleutianAI/ReleaseScout/pkg/validation"
)

// DefaultHost is the forge host accepted by ParseRepoURL.
const DefaultHost = "github.com"

// ParseRepoURL extracts a RepoRef from a repository page URL, e.g.
// "https://github.com/facebook/react.git" -> {facebook react}.
//
// The first two path segments are taken verbatim; trailing slashes and
// a trailing ".git" suffix are stripped first. Anything that does not
// parse, is not on the forge host, or has fewer than two segments fails
// with ErrInvalidRepoURL.
func ParseRepoURL(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, ErrInvalidRepoURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host != DefaultHost && host != "www."+DefaultHost {
		return RepoRef{}, fmt.Errorf("%w: host %q is not %s", ErrInvalidRepoURL, u.Hostname(), DefaultHost)
	}

	path := strings.TrimSuffix(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) < 2 {
		return RepoRef{}, fmt.Errorf("%w: expected /namespace/project in path %q", ErrInvalidRepoURL, u.Path)
	}

	// Taken verbatim from here on, but screened so a crafted URL cannot
	// smuggle traversal sequences into later API paths.
	for _, part := range segments[:2] {
		if err := validation.ValidateSlugPart(part); err != nil {
			return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidRepoURL, err)
		}
	}

	return RepoRef{Namespace: segments[0], Project: segments[1]}, nil
}
