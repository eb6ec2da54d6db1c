package feedmill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(title, subtitle, address string, published time.Time) Candidate {
	return Candidate{
		Article: Article{
			Title:           title,
			Content:         title,
			OriginalAddress: address,
			PublicationDate: published,
		},
		Subtitle: subtitle,
	}
}

func TestDedupe_ExactURLMatch(t *testing.T) {
	newer := candidate("Fresh Take", "", "https://x.com/a", testNow)
	older := candidate("Stale Copy", "", "https://x.com/a?page=2", testNow.Add(-time.Hour))

	var diag Diagnostics
	kept := Dedupe([]Candidate{older, newer}, &diag)

	require.Len(t, kept, 1)
	assert.Equal(t, "Fresh Take", kept[0].Article.Title)
	assert.Equal(t, 1, diag.Count(ReasonDuplicateExact))
}

func TestDedupe_FuzzyTitleMatch(t *testing.T) {
	newer := candidate("Weekly AI Roundup", "", "https://x.com/a", testNow)
	older := candidate("Weekly  AI   Roundup", "", "https://x.com/b", testNow.Add(-time.Hour))

	var diag Diagnostics
	kept := Dedupe([]Candidate{newer, older}, &diag)

	require.Len(t, kept, 1)
	assert.Equal(t, "https://x.com/a", kept[0].Article.OriginalAddress)
	assert.Equal(t, 1, diag.Count(ReasonDuplicateFuzzy))
}

func TestDedupe_SubtitleMatchesTitle(t *testing.T) {
	newer := candidate("Weekly Roundup", "", "https://x.com/a", testNow)
	older := candidate("Different Heading", "Weekly Roundup", "https://x.com/b", testNow.Add(-time.Hour))

	var diag Diagnostics
	kept := Dedupe([]Candidate{older, newer}, &diag)

	require.Len(t, kept, 1)
	assert.Equal(t, "Weekly Roundup", kept[0].Article.Title)
	assert.Equal(t, 1, diag.Count(ReasonDuplicateFuzzy))
}

func TestDedupe_ContentPrefixMatch(t *testing.T) {
	body := "The exact same opening paragraph repeated across two cards on the listing page, long enough to exceed the comparison prefix and then some extra words."
	a := candidate("Title One Here", "", "https://x.com/a", testNow)
	a.Article.Content = body
	b := candidate("Title Two Here", "", "https://x.com/b", testNow.Add(-time.Hour))
	b.Article.Content = body

	var diag Diagnostics
	kept := Dedupe([]Candidate{a, b}, &diag)

	require.Len(t, kept, 1)
	assert.Equal(t, "Title One Here", kept[0].Article.Title)
}

func TestDedupe_OrderIndependent(t *testing.T) {
	newer := candidate("Same Story Title", "", "https://x.com/new", testNow)
	older := candidate("Same Story Title", "", "https://x.com/old", testNow.Add(-48*time.Hour))

	for _, input := range [][]Candidate{{newer, older}, {older, newer}} {
		var diag Diagnostics
		kept := Dedupe(input, &diag)
		require.Len(t, kept, 1)
		assert.Equal(t, "https://x.com/new", kept[0].Article.OriginalAddress)
	}
}

func TestDedupe_DistinctCandidatesSurvive(t *testing.T) {
	a := candidate("First Distinct Story", "", "https://x.com/a", testNow)
	b := candidate("Second Unrelated Story", "", "https://x.com/b", testNow.Add(-time.Hour))

	var diag Diagnostics
	kept := Dedupe([]Candidate{a, b}, &diag)

	assert.Len(t, kept, 2)
	assert.Empty(t, diag.Events)
}
