package feedmill

import (
	"net/url"
	"sort"
	"strings"
)

// Candidate is an article that survived normalization and is headed for the
// store. The subtitle rides along for fuzzy matching only; it is not
// persisted separately.
type Candidate struct {
	Article  Article
	Subtitle string
}

// Key prefix lengths for fuzzy comparison. Titles are compared on their
// first 40 normalized characters, contents on their first 120.
const (
	titleKeyLen   = 40
	contentKeyLen = 120
)

// Dedupe removes duplicates from one batch of candidates. Candidates are
// considered newest-first so the most recent of a duplicate group survives.
// Exact duplicates share a normalized URL; fuzzy duplicates share a title
// prefix, a content prefix, or have a title matching another candidate's
// subtitle (newsletter cards often list the same piece both ways). Each
// drop is recorded in diag.
func Dedupe(cands []Candidate, diag *Diagnostics) []Candidate {
	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Article.PublicationDate.After(sorted[j].Article.PublicationDate)
	})

	seenURLs := make(map[string]bool)
	seenTitles := make(map[string]bool)
	seenSubtitles := make(map[string]bool)
	seenContents := make(map[string]bool)

	var kept []Candidate
	for _, cand := range sorted {
		uk := urlKey(cand.Article.OriginalAddress)
		if uk != "" && seenURLs[uk] {
			diag.Record(ReasonDuplicateExact, cand.Article.Title, cand.Article.OriginalAddress)
			continue
		}

		tk := normalizeKey(cand.Article.Title, titleKeyLen)
		sk := normalizeKey(cand.Subtitle, titleKeyLen)
		ck := normalizeKey(cand.Article.Content, contentKeyLen)

		fuzzy := seenTitles[tk] ||
			(tk != "" && seenSubtitles[tk]) ||
			(sk != "" && seenTitles[sk]) ||
			(ck != "" && seenContents[ck])
		if fuzzy {
			diag.Record(ReasonDuplicateFuzzy, cand.Article.Title, cand.Article.OriginalAddress)
			continue
		}

		if uk != "" {
			seenURLs[uk] = true
		}
		if tk != "" {
			seenTitles[tk] = true
		}
		if sk != "" {
			seenSubtitles[sk] = true
		}
		if ck != "" {
			seenContents[ck] = true
		}
		kept = append(kept, cand)
	}
	return kept
}

// urlKey reduces an address to scheme://host/path, lowercased with any
// trailing slash trimmed, so query-string variants of one page compare
// equal.
func urlKey(address string) string {
	u, err := url.Parse(address)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(address))
	}
	key := u.Scheme + "://" + u.Host + strings.TrimSuffix(u.Path, "/")
	return strings.ToLower(key)
}

// normalizeKey lowercases, collapses whitespace and keeps the first max
// characters of s.
func normalizeKey(s string, max int) string {
	key := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if len(key) > max {
		key = key[:max]
	}
	return key
}
