// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/ReleaseScout/services/changelog"
)

// ErrNoReleaseData means the caller supplied neither an assembled
// changelog nor a structured release list. Caller-side validation, not
// a pipeline error.
var ErrNoReleaseData = errors.New("no changelog or release data supplied for summarization")

// SummarizeRequest carries everything the report prompt needs. Either
// Changelog or Releases must be set; when both are present the
// changelog text wins and Releases is ignored.
type SummarizeRequest struct {
	Repo      string
	FromTag   string
	ToTag     string
	Changelog string
	Releases  []changelog.Release
}

// Summarizer turns an assembled changelog into a structured upgrade
// report via whichever LLM backend it was wired with. The returned
// document is treated as opaque markdown; nothing here inspects or
// validates the model's output.
type Summarizer struct {
	client LLMClient
}

func NewSummarizer(client LLMClient) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize renders the prompt and runs one generation.
func (s *Summarizer) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	prompt, err := BuildUpgradePrompt(req)
	if err != nil {
		return "", err
	}

	temp := float32(0.2)
	maxTokens := 2048
	report, err := s.client.Generate(ctx, prompt, GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("upgrade report generation failed: %w", err)
	}
	return report, nil
}

// BuildUpgradePrompt assembles the report prompt from the request.
// Exposed so the CLI can show the prompt in verbose mode.
func BuildUpgradePrompt(req SummarizeRequest) (string, error) {
	body := strings.TrimSpace(req.Changelog)
	if body == "" || body == changelog.EmptyChangelog {
		if len(req.Releases) == 0 {
			return "", ErrNoReleaseData
		}
		body = changelog.Assemble(req.Releases)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", req.Repo)
	fmt.Fprintf(&b, "Upgrading between versions %s and %s.\n\n", req.FromTag, req.ToTag)
	b.WriteString("Below is the concatenated changelog for every release in that range, newest first.\n")
	b.WriteString("Write a markdown upgrade report with these sections:\n")
	b.WriteString("1. Summary - what changed overall, in two or three sentences.\n")
	b.WriteString("2. Breaking changes - anything requiring consumer code changes; say 'none found' if empty.\n")
	b.WriteString("3. Deprecations and removals.\n")
	b.WriteString("4. Suggested upgrade steps, in order.\n\n")
	b.WriteString("Do not invent changes that are not in the changelog.\n\n")
	b.WriteString("--- CHANGELOG ---\n\n")
	b.WriteString(body)
	return b.String(), nil
}
