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

import "strings"

// breakingSignals are matched case-insensitively against the lowered
// release body. First match wins.
var breakingSignals = []string{
	"breaking change",
	"breaking changes",
	"**breaking**",
	"incompatible",
	"not backward compatible",
	"dropped support",
	"deprecated",
	"deprecation",
}

// IsBreaking reports whether a release body looks like it announces a
// breaking change.
//
// This is a heuristic over free text, not a guarantee: false positives
// and negatives are expected. The contract is only that the same body
// always yields the same verdict. The all-caps "BREAKING CHANGE" token
// is checked case-sensitively on top of the lowered signals, mirroring
// the conventional-commits footer convention.
func IsBreaking(body string) bool {
	if body == "" {
		return false
	}
	lower := strings.ToLower(body)
	for _, signal := range breakingSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return strings.Contains(body, "BREAKING CHANGE")
}
