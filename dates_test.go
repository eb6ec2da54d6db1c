package feedmill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.May, 20, 15, 0, 0, 0, time.UTC)

func TestResolveDate_ParsedTimeWins(t *testing.T) {
	want := time.Date(2024, time.May, 18, 10, 0, 0, 0, time.UTC)
	hints := []DateHint{
		{Kind: HintTime, Time: want},
		{Kind: HintURL, Value: "https://x.com/2024/01/01/post"},
	}
	got, inferred := ResolveDate(hints, testNow)
	require.False(t, inferred)
	assert.Equal(t, want, got)
}

func TestResolveDate_SkipsImplausibleHint(t *testing.T) {
	hints := []DateHint{
		{Kind: HintISO, Value: "2020-01-01T00:00:00Z"},
		{Kind: HintText, Value: "May 18"},
	}
	got, inferred := ResolveDate(hints, testNow)
	require.False(t, inferred)
	assert.Equal(t, time.Date(2024, time.May, 18, 12, 0, 0, 0, time.UTC), got)
}

func TestResolveDate_FutureDateImplausible(t *testing.T) {
	hints := []DateHint{{Kind: HintISO, Value: "2024-07-01T00:00:00Z"}}
	got, inferred := ResolveDate(hints, testNow)
	require.True(t, inferred)
	assert.Equal(t, time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC), got)
}

func TestResolveDate_RelativePhrase(t *testing.T) {
	hints := []DateHint{{Kind: HintText, Value: "3 days ago"}}
	got, inferred := ResolveDate(hints, testNow)
	require.False(t, inferred)
	assert.Equal(t, testNow.Add(-3*24*time.Hour), got)
}

func TestResolveDate_URLDate(t *testing.T) {
	hints := []DateHint{{Kind: HintURL, Value: "https://x.com/2024/5/18/big-story"}}
	got, inferred := ResolveDate(hints, testNow)
	require.False(t, inferred)
	assert.Equal(t, time.Date(2024, time.May, 18, 12, 0, 0, 0, time.UTC), got)
}

func TestResolveDate_URLDateRejectsBadMonth(t *testing.T) {
	hints := []DateHint{{Kind: HintURL, Value: "https://x.com/2024/13/40/story"}}
	_, inferred := ResolveDate(hints, testNow)
	assert.True(t, inferred)
}

func TestResolveDate_NoHintsFallsBackToNoon(t *testing.T) {
	got, inferred := ResolveDate(nil, testNow)
	require.True(t, inferred)
	assert.Equal(t, time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC), got)
}

func TestResolveDate_TextFormats(t *testing.T) {
	cases := map[string]time.Time{
		"May 18, 2024":    time.Date(2024, time.May, 18, 12, 0, 0, 0, time.UTC),
		"January 2, 2024": time.Date(2024, time.January, 2, 12, 0, 0, 0, time.UTC),
		"2024-05-18":      time.Date(2024, time.May, 18, 0, 0, 0, 0, time.UTC),
	}
	for value, want := range cases {
		got, inferred := ResolveDate([]DateHint{{Kind: HintText, Value: value}}, testNow)
		require.False(t, inferred, "value=%q", value)
		assert.Equal(t, want, got, "value=%q", value)
	}
}
