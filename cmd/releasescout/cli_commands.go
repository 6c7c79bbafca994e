// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "releasescout",
		Short: "A CLI to analyze what changed between two releases of a repository",
		Long: `ReleaseScout fetches the complete release history of a public
repository, flags releases whose notes look like breaking changes,
assembles the changelog between any two versions, and can ask an LLM
backend for a structured upgrade report.`,
		Version: "0.2.0",
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [repository-url]",
		Short: "Analyze the release history between two versions",
		Long: `Fetches every release (or tag, for repositories that never publish
releases) of the given repository, marks likely breaking changes, and
assembles the changelog for an inclusive version range.

When --from/--to are omitted an interactive picker lists the fetched
versions. With --ai the assembled changelog is summarized into an
upgrade report by the configured model backend.`,
		Args: cobra.ExactArgs(1),
		Run:  runAnalyzeCommand,
	}

	// --- analyze flags ---
	analyzeFromTag string // lower/upper bound of the range (order does not matter)
	analyzeToTag   string
	analyzeAI      bool // generate the LLM upgrade report
	analyzeJSON    bool // machine-readable output
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFromTag, "from", "",
		"Version tag at one end of the range (prompted interactively when omitted)")
	analyzeCmd.Flags().StringVar(&analyzeToTag, "to", "",
		"Version tag at the other end of the range")
	analyzeCmd.Flags().BoolVar(&analyzeAI, "ai", false,
		"Generate an AI upgrade report from the assembled changelog")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false,
		"Output as JSON for scripting")

	rootCmd.AddCommand(analyzeCmd)
}
