// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the breaking-change classifier.

package changelog

import "testing"

func TestIsBreaking(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"empty body", "", false},
		{"plain notes", "Fixed a typo in the docs and bumped dependencies.", false},
		{"breaking change phrase", "This release includes a breaking change to the API.", true},
		{"breaking changes plural", "Breaking Changes:\n- removed legacy flags", true},
		{"bold breaking marker", "This release contains a **BREAKING** change to the config format.", true},
		{"incompatible", "The new wire format is incompatible with 1.x clients.", true},
		{"not backward compatible", "Note: this version is not backward compatible.", true},
		{"dropped support", "We dropped support for Node 14.", true},
		{"deprecated", "The --legacy flag is deprecated and will be removed.", true},
		{"deprecation notice", "Deprecation: the v1 endpoints go away next release.", true},
		{"conventional commits footer", "feat: new parser\n\nBREAKING CHANGE: config keys renamed", true},
		{"mixed case phrase", "A Breaking Change was introduced in the scheduler.", true},
		{"mentions break but not a signal", "Fixed a bug that could break long urls in tables.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBreaking(tt.body); got != tt.want {
				t.Errorf("IsBreaking(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestIsBreaking_Deterministic(t *testing.T) {
	body := "Breaking changes: the CLI flag parser was rewritten."
	first := IsBreaking(body)
	for i := 0; i < 10; i++ {
		if IsBreaking(body) != first {
			t.Fatal("IsBreaking gave a different verdict for the same body")
		}
	}
}
