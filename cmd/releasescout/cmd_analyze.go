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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/ReleaseScout/cmd/releasescout/config"
	"github.com/AleutianAI/ReleaseScout/pkg/ux"
	"github.com/AleutianAI/ReleaseScout/pkg/validation"
	"github.com/AleutianAI/ReleaseScout/services/changelog"
	"github.com/AleutianAI/ReleaseScout/services/forge"
	"github.com/AleutianAI/ReleaseScout/services/llm"
)

// analyzeOutput is the --json shape.
type analyzeOutput struct {
	Repo            string              `json:"repo"`
	FromTag         string              `json:"from_tag"`
	ToTag           string              `json:"to_tag"`
	SourcedFromTags bool                `json:"sourced_from_tags"`
	Releases        []changelog.Release `json:"releases"`
	Changelog       string              `json:"changelog"`
	Report          string              `json:"report,omitempty"`
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) {
	if analyzeJSON || !isTerminal(os.Stdout) {
		ux.Plain = true
	}

	ref, err := forge.ParseRepoURL(args[0])
	if err != nil {
		ux.Error(fmt.Sprintf("Not a usable repository URL: %v", err))
		os.Exit(1)
	}

	// The version picker needs a real terminal. When input is piped
	// (CI/CD, scripts) both bounds must come from flags.
	if (analyzeFromTag == "" || analyzeToTag == "") && !isTerminal(os.Stdin) {
		ux.Error("No terminal available for interactive version selection; pass --from and --to.")
		os.Exit(1)
	}

	result, err := fetchHistory(cmd.Context(), ref)
	if err != nil {
		ux.Error(describeForgeError(err))
		os.Exit(1)
	}

	if len(result.Releases) == 0 {
		ux.Error("The repository has no releases and no tags, nothing to analyze.")
		os.Exit(1)
	}
	if result.SourcedFromTags {
		ux.Warning("No published releases found; analyzing tags instead (no release notes available).")
	} else if !result.HasMeaningfulNotes {
		ux.Warning("This repository's release notes are empty or trivial; breaking-change detection will be unreliable.")
	}

	fromTag, toTag := analyzeFromTag, analyzeToTag
	if fromTag == "" || toTag == "" {
		fromTag, toTag, err = pickRange(result.Releases, fromTag, toTag)
		if err != nil {
			ux.Error(fmt.Sprintf("Version selection aborted: %v", err))
			os.Exit(1)
		}
	}
	for _, tag := range []string{fromTag, toTag} {
		if err := validation.ValidateTag(tag); err != nil {
			ux.Error(err.Error())
			os.Exit(1)
		}
	}

	slice := changelog.SelectRange(result.Releases, fromTag, toTag)
	if len(slice) == 0 {
		ux.Error(fmt.Sprintf("Tags %q and %q were not both found in the release history.", fromTag, toTag))
		os.Exit(1)
	}
	text := changelog.Assemble(slice)

	var report string
	if analyzeAI {
		report, err = generateReport(cmd.Context(), ref, fromTag, toTag, text, slice)
		if err != nil {
			ux.Error(fmt.Sprintf("Upgrade report generation failed: %v", err))
			os.Exit(1)
		}
	}

	if analyzeJSON {
		out := analyzeOutput{
			Repo:            ref.String(),
			FromTag:         fromTag,
			ToTag:           toTag,
			SourcedFromTags: result.SourcedFromTags,
			Releases:        slice,
			Changelog:       text,
			Report:          report,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			ux.Error(fmt.Sprintf("Failed to encode output: %v", err))
			os.Exit(1)
		}
		return
	}

	renderAnalysis(ref, fromTag, toTag, slice, text, report)
}

// isTerminal reports whether f is attached to a real terminal, Cygwin
// pseudo-terminals included.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// fetchHistory builds the forge client from the loaded config and runs
// one aggregation behind a spinner.
func fetchHistory(ctx context.Context, ref forge.RepoRef) (changelog.AggregationResult, error) {
	client := forge.NewClient(config.Global.Forge.APIBaseURL, config.Token(), nil)
	aggregator := changelog.NewAggregator(client)

	spinner := ux.NewSpinner(fmt.Sprintf("Fetching release history for %s...", ref.String()))
	spinner.Start()
	defer spinner.Stop()

	return aggregator.Aggregate(ctx, ref)
}

// pickRange runs the interactive version picker for whichever bounds
// were not passed as flags.
func pickRange(releases []changelog.Release, fromTag, toTag string) (string, string, error) {
	options := make([]huh.Option[string], 0, len(releases))
	for _, r := range releases {
		label := fmt.Sprintf("%-24s %s", r.VersionTag, r.PublishedAt.Format("2006-01-02"))
		if r.Breaking {
			label += "  " + string(ux.IconBreaking) + " breaking"
		}
		options = append(options, huh.NewOption(label, r.VersionTag))
	}

	var fields []huh.Field
	if fromTag == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Current version").
			Description("The version you are upgrading from").
			Options(options...).
			Value(&fromTag))
	}
	if toTag == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("Target version").
			Description("The version you are upgrading to").
			Options(options...).
			Value(&toTag))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return "", "", err
	}
	return fromTag, toTag, nil
}

// generateReport asks the configured LLM backend for the upgrade
// report. The backend constructors are env-driven like every other
// service client, so the config file values are exported first.
func generateReport(ctx context.Context, ref forge.RepoRef, fromTag, toTag, text string, slice []changelog.Release) (string, error) {
	exportBackendEnv(config.Global.ModelBackend)

	client, err := llm.NewClientFromEnv()
	if err != nil {
		return "", err
	}
	summarizer := llm.NewSummarizer(client)

	spinner := ux.NewSpinner("Generating upgrade report...")
	spinner.Start()
	defer spinner.Stop()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	return summarizer.Summarize(ctx, llm.SummarizeRequest{
		Repo:      ref.String(),
		FromTag:   fromTag,
		ToTag:     toTag,
		Changelog: text,
		Releases:  slice,
	})
}

// exportBackendEnv maps config file values onto the env vars the llm
// package constructors read. Explicit env always wins.
func exportBackendEnv(backend config.BackendConfig) {
	setIfUnset := func(key, value string) {
		if value != "" && os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	setIfUnset("LLM_BACKEND", backend.Type)
	setIfUnset("OLLAMA_BASE_URL", backend.BaseURL)
	setIfUnset("OLLAMA_MODEL", backend.Model)
	setIfUnset("OPENAI_MODEL", backend.Model)
}

// renderAnalysis prints the styled terminal view.
func renderAnalysis(ref forge.RepoRef, fromTag, toTag string, slice []changelog.Release, text, report string) {
	ux.Title(fmt.Sprintf("%s: %s %s %s", ref.String(), fromTag, ux.IconArrow, toTag))
	ux.Muted(fmt.Sprintf("%d release(s) in range", len(slice)))
	fmt.Println()

	breaking := 0
	for _, r := range slice {
		marker := ux.IconBullet.Render()
		if r.Breaking {
			marker = ux.IconBreaking.Render()
			breaking++
		}
		fmt.Printf("  %s %s  %s\n", marker,
			ux.Styles.Bold.Render(r.VersionTag),
			ux.Styles.Muted.Render(r.PublishedAt.Format("2006-01-02")))
	}
	fmt.Println()

	if breaking > 0 {
		ux.Warning(fmt.Sprintf("%d release(s) in this range look like they contain breaking changes.", breaking))
	} else {
		ux.Success("No breaking-change signals found in this range.")
	}

	if report != "" {
		fmt.Println()
		ux.Title("Upgrade report")
		fmt.Println(ux.Styles.ReportBox.Render(report))
		return
	}

	fmt.Println()
	ux.Title("Changelog")
	fmt.Println(text)
}

// describeForgeError turns the forge error taxonomy into the line shown
// to the user.
func describeForgeError(err error) string {
	return fmt.Sprintf("Could not fetch the release history: %v", err)
}
