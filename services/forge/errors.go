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
	"errors"
	"fmt"
)

// ErrInvalidRepoURL is returned by ParseRepoURL for anything that is
// not a URL on the configured forge host with at least two path
// segments. Recoverable: the user corrects the input and resubmits.
var ErrInvalidRepoURL = errors.New("not a valid repository URL")

// ErrRepoNotFound is returned when the forge answers 404 for a listing
// call. Terminal for that request.
var ErrRepoNotFound = errors.New("repository not found")

// RateLimitError is returned when the forge answers 403 with an
// exhausted quota header. The message carries retry guidance because
// it is surfaced verbatim to the user.
type RateLimitError struct {
	Remaining string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("forge API rate limit exceeded (remaining=%s): wait for the quota window to reset or configure an access token", e.Remaining)
}

// UpstreamError covers every other non-2xx response. It carries the
// status for diagnostics; callers treat it as terminal.
type UpstreamError struct {
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("forge API request failed: %s", e.Status)
}
