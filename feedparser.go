package feedmill

import (
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FeedParseResult holds the raw items extracted from one feed payload and
// the number of stub entries dropped along the way. Dropped entries are
// counted but never surfaced as pipeline errors.
type FeedParseResult struct {
	Items   []RawItem
	Skipped int
}

// ParseFeed parses an RSS 2.0 or Atom payload into raw item tuples. The
// gofeed library detects the format, so a document is never parsed as both.
// Field extraction follows fallback chains: title from <title>; content
// from <description> then <content:encoded> (Atom <content>/<summary>);
// link from <link> then <guid> (Atom link href then <id>); date from
// <pubDate> then <updated> then <dc:date>. CDATA wrappers are unwrapped by
// the parser before the fields are read.
func ParseFeed(payload string) (*FeedParseResult, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	result := &FeedParseResult{}
	for _, item := range feed.Items {
		raw, ok := feedItemToRaw(item)
		if !ok {
			result.Skipped++
			continue
		}
		result.Items = append(result.Items, raw)
	}
	return result, nil
}

// feedItemToRaw maps one feed entry to a RawItem. Entries with no usable
// title and no non-empty cleaned content are stubs and are dropped.
func feedItemToRaw(item *gofeed.Item) (RawItem, bool) {
	if item == nil {
		return RawItem{}, false
	}

	title := strings.TrimSpace(item.Title)

	content := item.Description
	if strings.TrimSpace(content) == "" {
		content = item.Content
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = strings.TrimSpace(item.GUID)
	}

	if title == "" && CleanText(content) == "" {
		return RawItem{}, false
	}

	raw := RawItem{
		Title:      title,
		RawContent: content,
		Link:       link,
	}

	// Date hints, machine-readable first.
	if item.PublishedParsed != nil {
		raw.DateHints = append(raw.DateHints, DateHint{Kind: HintTime, Time: *item.PublishedParsed})
	} else if item.Published != "" {
		raw.DateHints = append(raw.DateHints, DateHint{Kind: HintText, Value: item.Published})
	}
	if item.UpdatedParsed != nil {
		raw.DateHints = append(raw.DateHints, DateHint{Kind: HintTime, Time: *item.UpdatedParsed})
	} else if item.Updated != "" {
		raw.DateHints = append(raw.DateHints, DateHint{Kind: HintText, Value: item.Updated})
	}
	if item.DublinCoreExt != nil {
		for _, d := range item.DublinCoreExt.Date {
			raw.DateHints = append(raw.DateHints, DateHint{Kind: HintISO, Value: d})
		}
	}
	if link != "" {
		raw.DateHints = append(raw.DateHints, DateHint{Kind: HintURL, Value: link})
	}

	return raw, true
}
