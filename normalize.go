package feedmill

import (
	"strings"
	"unicode/utf8"
)

// CleanText strips markup from raw content, collapses whitespace runs and
// truncates to the content cap. Paragraph breaks survive as single
// newlines. Empty input yields empty output; callers fall back to the title
// when cleaned content is empty.
func CleanText(raw string) string {
	text := stripTags(raw)

	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		paragraphs = append(paragraphs, strings.Join(fields, " "))
	}
	text = strings.Join(paragraphs, "\n")

	return truncate(text, MaxContentLen)
}

// CleanTitle trims, collapses whitespace and truncates a title to the
// title cap.
func CleanTitle(raw string) string {
	title := strings.Join(strings.Fields(stripTags(raw)), " ")
	return truncate(title, MaxTitleLen)
}

// stripTags removes markup tags. Block-level closers become newlines so
// paragraph boundaries survive the strip.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	replacer := strings.NewReplacer(
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
		"</p>", "\n", "</div>", "\n", "</li>", "\n",
	)
	s = replacer.Replace(s)

	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
