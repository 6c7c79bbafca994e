// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up
// interpolated into forge API paths. Using these validators prevents
// path traversal and query injection through crafted namespace, project,
// or tag strings.
package validation

import (
	"fmt"
	"regexp"
)

// slugPartPattern matches one segment of a "namespace/project" slug as
// the forge itself allows them: alphanumerics, hyphens, underscores,
// dots. Leading dots are legal (".github"-style repositories exist);
// the bare "." and ".." segments are rejected separately so traversal
// sequences never reach an API path.
var slugPartPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,100}$`)

// tagPattern matches a git tag name as used in version labels. Git
// itself allows more, but everything outside this set is either
// invalid in a ref or meaningless as a version label.
var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+\-/]{0,199}$`)

// ValidateSlugPart validates one path segment (namespace or project)
// before it is placed into a forge API URL.
func ValidateSlugPart(part string) error {
	if part == "" {
		return fmt.Errorf("namespace/project segment cannot be empty")
	}
	if part == "." || part == ".." {
		return fmt.Errorf("invalid namespace/project segment: %q", part)
	}
	if !slugPartPattern.MatchString(part) {
		return fmt.Errorf("invalid namespace/project segment: %q", part)
	}
	return nil
}

// ValidateTag validates a version tag label from user input.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if !tagPattern.MatchString(tag) {
		return fmt.Errorf("invalid tag name: %q", tag)
	}
	return nil
}
