package feedmill

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateHintKind tags the strategy used to interpret a date hint.
type DateHintKind int

const (
	// HintTime is an already-parsed timestamp, e.g. a feed date the XML
	// parser decoded.
	HintTime DateHintKind = iota
	// HintISO is a machine-readable datetime string, e.g. a time element's
	// datetime attribute.
	HintISO
	// HintText is free text found near the item ("May 18", "3 days ago").
	HintText
	// HintURL is the article link, scanned for an embedded YYYY-MM-DD or
	// YYYY/M/D segment.
	HintURL
)

// DateHint is one candidate representation of an item's publication date.
// Hints are tried in the order the caller supplies them.
type DateHint struct {
	Kind  DateHintKind
	Value string
	Time  time.Time // set only for HintTime
}

// Unit lengths for relative phrases. Month and year are the 30-day and
// 365-day approximations the heuristics are documented to use.
const (
	relDay   = 24 * time.Hour
	relWeek  = 7 * relDay
	relMonth = 30 * relDay
	relYear  = 365 * relDay
)

var (
	relativeRe = regexp.MustCompile(`(?i)(\d+)\s+(hour|day|week|month|year)s?\s+ago`)
	urlDateRe  = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2})`)
	monthDayRe = regexp.MustCompile(`[A-Za-z]+ \d{1,2}`)
)

// isoFormats are tried in order for machine-readable datetime strings.
var isoFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// textFormats are full-string date formats tried for free text before the
// looser month-day scan.
var textFormats = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2006-01-02",
}

// ResolveDate walks the hints in priority order and returns the first
// plausible timestamp. The second return is true when no hint produced a
// plausible date and the noon-UTC fallback was used; callers report that as
// an inferred date, never as an error.
func ResolveDate(hints []DateHint, now time.Time) (time.Time, bool) {
	for _, hint := range hints {
		if t, ok := resolveHint(hint, now); ok && plausible(t, now) {
			return t, false
		}
	}
	return noonUTC(now), true
}

// plausible rejects timestamps more than a year in the past or more than a
// day in the future. Values outside this window usually come from misparsed
// fragments such as copyright years, not real publication dates.
func plausible(t, now time.Time) bool {
	return t.After(now.Add(-relYear)) && t.Before(now.Add(relDay))
}

func resolveHint(hint DateHint, now time.Time) (time.Time, bool) {
	switch hint.Kind {
	case HintTime:
		return hint.Time, !hint.Time.IsZero()
	case HintISO:
		return parseISODate(hint.Value)
	case HintText:
		return parseTextDate(hint.Value, now)
	case HintURL:
		return parseURLDate(hint.Value)
	}
	return time.Time{}, false
}

func parseISODate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range isoFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTextDate tries machine formats first, then full text dates, then
// bare month-day text (year defaults to the current year, time to noon
// UTC), then relative phrases like "3 days ago".
func parseTextDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := parseISODate(s); ok {
		return t, true
	}
	for _, format := range textFormats {
		if t, err := time.Parse(format, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), true
		}
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		var unit time.Duration
		switch strings.ToLower(m[2]) {
		case "hour":
			unit = time.Hour
		case "day":
			unit = relDay
		case "week":
			unit = relWeek
		case "month":
			unit = relMonth
		case "year":
			unit = relYear
		}
		return now.Add(-time.Duration(n) * unit), true
	}

	if m := monthDayRe.FindString(s); m != "" {
		for _, format := range []string{"January 2", "Jan 2"} {
			if t, err := time.Parse(format, m); err == nil {
				return time.Date(now.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), true
			}
		}
	}

	return time.Time{}, false
}

func parseURLDate(link string) (time.Time, bool) {
	m := urlDateRe.FindStringSubmatch(link)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC), true
}

// noonUTC is the last-resort publication date: today at 12:00 UTC.
func noonUTC(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 12, 0, 0, 0, time.UTC)
}
