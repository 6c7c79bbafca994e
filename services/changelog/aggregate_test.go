// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the release aggregator.

package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/ReleaseScout/services/forge"
)

// --- Fake forge ---

type fakeForge struct {
	releasePages [][]forge.ReleaseRecord
	tagPages     [][]forge.TagRecord
	releasesErr  error
	tagsErr      error
	commits      map[string]forge.CommitDetail
	commitErr    error

	releaseCalls int
	tagCalls     int
	commitCalls  int
}

func (f *fakeForge) ListReleases(ctx context.Context, ref forge.RepoRef, page, perPage int) ([]forge.ReleaseRecord, bool, error) {
	f.releaseCalls++
	if f.releasesErr != nil {
		return nil, false, f.releasesErr
	}
	if page > len(f.releasePages) {
		return nil, false, nil
	}
	return f.releasePages[page-1], page < len(f.releasePages), nil
}

func (f *fakeForge) ListTags(ctx context.Context, ref forge.RepoRef, page, perPage int) ([]forge.TagRecord, bool, error) {
	f.tagCalls++
	if f.tagsErr != nil {
		return nil, false, f.tagsErr
	}
	if page > len(f.tagPages) {
		return nil, false, nil
	}
	return f.tagPages[page-1], page < len(f.tagPages), nil
}

func (f *fakeForge) GetCommit(ctx context.Context, commitURL string) (forge.CommitDetail, error) {
	f.commitCalls++
	if f.commitErr != nil {
		return forge.CommitDetail{}, f.commitErr
	}
	detail, ok := f.commits[commitURL]
	if !ok {
		return forge.CommitDetail{}, errors.New("unknown commit URL")
	}
	return detail, nil
}

func testRepo() forge.RepoRef {
	return forge.RepoRef{Namespace: "acme", Project: "widgets"}
}

// --- Release path ---

func TestAggregate_PagesThroughAllReleases(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var page1, page2 []forge.ReleaseRecord
	for i := 0; i < 100; i++ {
		page1 = append(page1, forge.ReleaseRecord{
			ID:          int64(i),
			TagName:     fmt.Sprintf("v1.%d.0", i),
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
			Body:        "Routine maintenance release with dependency bumps.",
		})
	}
	for i := 100; i < 150; i++ {
		page2 = append(page2, forge.ReleaseRecord{
			ID:          int64(i),
			TagName:     fmt.Sprintf("v1.%d.0", i),
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
			Body:        "Routine maintenance release with dependency bumps.",
		})
	}

	f := &fakeForge{releasePages: [][]forge.ReleaseRecord{page1, page2}}
	agg := NewAggregator(f)

	result, err := agg.Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Releases) != 150 {
		t.Fatalf("got %d releases, want 150", len(result.Releases))
	}
	if f.releaseCalls != 2 {
		t.Errorf("made %d release page calls, want 2", f.releaseCalls)
	}
	if result.SourcedFromTags {
		t.Error("SourcedFromTags = true for a repo with releases")
	}
	if f.tagCalls != 0 {
		t.Errorf("tag listing called %d times on the release path", f.tagCalls)
	}
	for i := 1; i < len(result.Releases); i++ {
		if result.Releases[i].PublishedAt.After(result.Releases[i-1].PublishedAt) {
			t.Fatalf("releases not sorted newest-first at index %d", i)
		}
	}
}

func TestAggregate_ClassifiesBreaking(t *testing.T) {
	f := &fakeForge{releasePages: [][]forge.ReleaseRecord{{
		{ID: 1, TagName: "v2.0.0", Body: "This release contains a **BREAKING** change to the config format.", PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, TagName: "v1.0.0", Body: "General availability with full documentation.", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}}}
	agg := NewAggregator(f)

	result, err := agg.Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if !result.Releases[0].Breaking {
		t.Error("v2.0.0 not flagged breaking")
	}
	if result.Releases[1].Breaking {
		t.Error("v1.0.0 incorrectly flagged breaking")
	}
	if !result.HasMeaningfulNotes {
		t.Error("HasMeaningfulNotes = false with real bodies present")
	}
}

func TestAggregate_MeaningfulNotesRequiresSubstance(t *testing.T) {
	f := &fakeForge{releasePages: [][]forge.ReleaseRecord{{
		{ID: 1, TagName: "v0.2.0", Body: "   "},
		{ID: 2, TagName: "v0.1.0", Body: "bugfix"},
	}}}
	agg := NewAggregator(f)

	result, err := agg.Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if result.HasMeaningfulNotes {
		t.Error("HasMeaningfulNotes = true for whitespace and sub-threshold bodies")
	}
}

func TestAggregate_MeaningfulNotesCountsCharactersNotBytes(t *testing.T) {
	// 9 CJK characters encode to 27 bytes; the threshold is measured
	// in characters, so this body is still below the bar.
	short := &fakeForge{releasePages: [][]forge.ReleaseRecord{{
		{ID: 1, TagName: "v0.1.0", Body: "修正了十个小错误啊"},
	}}}
	result, err := NewAggregator(short).Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if result.HasMeaningfulNotes {
		t.Error("HasMeaningfulNotes = true for a 9-character multibyte body")
	}

	long := &fakeForge{releasePages: [][]forge.ReleaseRecord{{
		{ID: 1, TagName: "v0.1.0", Body: strings.Repeat("改", 20)},
	}}}
	result, err = NewAggregator(long).Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if !result.HasMeaningfulNotes {
		t.Error("HasMeaningfulNotes = false for a 20-character multibyte body")
	}
}

func TestAggregate_ReleaseErrorAbortsWithoutTagFallback(t *testing.T) {
	f := &fakeForge{releasesErr: forge.ErrRepoNotFound}
	agg := NewAggregator(f)

	_, err := agg.Aggregate(context.Background(), testRepo())
	if !errors.Is(err, forge.ErrRepoNotFound) {
		t.Fatalf("error = %v, want wrapped ErrRepoNotFound", err)
	}
	if !strings.Contains(err.Error(), "page 1") {
		t.Errorf("error %q should name the failing page", err)
	}
	if f.tagCalls != 0 {
		t.Error("tag fallback attempted after a failed releases phase")
	}
}

// --- Tag fallback path ---

func TestAggregate_FallsBackToTags(t *testing.T) {
	commitURL := func(sha string) string {
		return "https://api.github.com/repos/acme/widgets/commits/" + sha
	}
	f := &fakeForge{
		tagPages: [][]forge.TagRecord{{
			{Name: "v0.3.0", Commit: forge.CommitRef{SHA: "aaaaaaaa01", URL: commitURL("aaaaaaaa01")}, ZipballURL: "https://api.github.com/repos/acme/widgets/zipball/v0.3.0"},
			{Name: "v0.2.0", Commit: forge.CommitRef{SHA: "bbbbbbbb02", URL: commitURL("bbbbbbbb02")}, ZipballURL: "https://api.github.com/repos/acme/widgets/zipball/v0.2.0"},
			{Name: "v0.1.0", Commit: forge.CommitRef{SHA: "cccccccc03", URL: commitURL("cccccccc03")}, ZipballURL: "https://api.github.com/repos/acme/widgets/zipball/v0.1.0"},
		}},
		commits: map[string]forge.CommitDetail{},
	}
	dates := map[string]time.Time{
		"aaaaaaaa01": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"bbbbbbbb02": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		"cccccccc03": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for sha, d := range dates {
		var detail forge.CommitDetail
		detail.SHA = sha
		detail.Commit.Committer.Date = d
		f.commits[commitURL(sha)] = detail
	}

	agg := NewAggregator(f)
	result, err := agg.Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if !result.SourcedFromTags {
		t.Error("SourcedFromTags = false on the tag path")
	}
	if result.HasMeaningfulNotes {
		t.Error("HasMeaningfulNotes = true for placeholder-only bodies")
	}
	if len(result.Releases) != 3 {
		t.Fatalf("got %d releases, want 3", len(result.Releases))
	}
	if f.commitCalls != 3 {
		t.Errorf("made %d commit fetches, want 3", f.commitCalls)
	}

	wantOrder := []string{"v0.3.0", "v0.2.0", "v0.1.0"}
	for i, r := range result.Releases {
		if r.VersionTag != wantOrder[i] {
			t.Fatalf("order %v, want %v", result.Releases, wantOrder)
		}
		if r.Breaking {
			t.Errorf("%s flagged breaking with no body to infer from", r.VersionTag)
		}
		if !strings.Contains(r.Body, "No release notes were published for tag "+r.VersionTag) {
			t.Errorf("%s body = %q, want placeholder", r.VersionTag, r.Body)
		}
		if !strings.Contains(r.DetailURL, "/releases/tag/") {
			t.Errorf("%s DetailURL = %q, want tag page URL", r.VersionTag, r.DetailURL)
		}
	}
	if !result.Releases[0].PublishedAt.Equal(dates["aaaaaaaa01"]) {
		t.Errorf("v0.3.0 PublishedAt = %v, want commit date", result.Releases[0].PublishedAt)
	}
}

func TestAggregate_TagErrorPropagates(t *testing.T) {
	f := &fakeForge{tagsErr: &forge.UpstreamError{StatusCode: 502, Status: "502 Bad Gateway"}}
	agg := NewAggregator(f)

	_, err := agg.Aggregate(context.Background(), testRepo())
	var upErr *forge.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("error = %v, want wrapped *UpstreamError", err)
	}
}

func TestAggregate_EmptyRepoYieldsEmptyResult(t *testing.T) {
	f := &fakeForge{}
	agg := NewAggregator(f)

	result, err := agg.Aggregate(context.Background(), testRepo())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if len(result.Releases) != 0 {
		t.Errorf("got %d releases for an empty repo", len(result.Releases))
	}
	if !result.SourcedFromTags {
		t.Error("empty repo should report the tag-sourced path")
	}
}
