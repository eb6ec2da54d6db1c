package feedmill

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nkemp/feedmill/scraper"
)

// Tier B selectors, tried in order. The first selector that yields any
// items wins; later selectors are never consulted for the same page.
var genericSelectors = []string{
	".cursor-pointer",
	`div[class*="cursor-pointer"]`,
	".post-preview",
	".post",
	"article",
	"h2",
}

// Minimum title lengths. Link text shorter than minLinkTitleLen is
// navigation chrome, and headings shorter than minHeadingTitleLen are
// section labels rather than article titles.
const (
	minLinkTitleLen    = 5
	minHeadingTitleLen = 10
)

// DefaultDenylist filters boilerplate strings that show up inside article
// cards on newsletter archive pages.
var DefaultDenylist = []string{
	"Zain Kahn",
	"Subscribe now",
	"Sign in",
	"Share this post",
	"Copy link",
	"Facebook",
	"Notes",
	"Discussion about this post",
}

// Extractor pulls article candidates out of listing pages. The zero value
// works; NewExtractor installs the default denylist.
type Extractor struct {
	Denylist []string
}

// NewExtractor returns an extractor with the default denylist.
func NewExtractor() *Extractor {
	return &Extractor{Denylist: DefaultDenylist}
}

// Extract parses the page and runs the extraction cascade. An explicit
// selector config (per-source overrides first, then the registered site
// table) takes the targeted path; otherwise the generic selectors are
// tried in order and the first one producing items wins. A page that
// matches nothing yields an empty slice, not an error.
func (e *Extractor) Extract(html, baseURL string, overrides *scraper.SelectorConfig) ([]RawItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	if cfg, ok := e.explicitConfig(baseURL, overrides); ok {
		if items := e.extractExplicit(doc, cfg); len(items) > 0 {
			return items, nil
		}
	}

	for _, selector := range genericSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		var items []RawItem
		switch selector {
		case ".post-preview", ".post":
			items = e.extractPostContainers(sel, baseURL)
		case "h2":
			items = e.extractHeadings(sel, baseURL)
		default:
			items = e.extractCards(sel, baseURL)
		}
		if len(items) > 0 {
			return items, nil
		}
	}
	return nil, nil
}

func (e *Extractor) explicitConfig(baseURL string, overrides *scraper.SelectorConfig) (scraper.SelectorConfig, bool) {
	if overrides != nil && !overrides.Empty() {
		return *overrides, true
	}
	return scraper.MatchSite(baseURL)
}

// extractExplicit walks the configured article containers. The title comes
// from the configured link's text; items with short titles or repeated
// hrefs are skipped. The subtitle lives in the configured content selector
// or, on card layouts, in the anchor of the div following the title's
// enclosing div.
func (e *Extractor) extractExplicit(doc *goquery.Document, cfg scraper.SelectorConfig) []RawItem {
	articleSel := cfg.Article
	if articleSel == "" {
		articleSel = "article"
	}
	linkSel := cfg.Link
	if linkSel == "" {
		linkSel = "a[href]"
	}

	var items []RawItem
	seen := make(map[string]bool)
	doc.Find(articleSel).Each(func(_ int, container *goquery.Selection) {
		link := container.Find(linkSel).First()
		href, ok := link.Attr("href")
		if !ok || seen[href] {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" && cfg.Title != "" {
			title = strings.TrimSpace(container.Find(cfg.Title).First().Text())
		}
		if len(title) < minLinkTitleLen || e.denied(title) {
			return
		}
		seen[href] = true

		var subtitle string
		if cfg.Content != "" {
			subtitle = strings.TrimSpace(container.Find(cfg.Content).First().Text())
		} else {
			// Card layouts put the subtitle in a sibling div's anchor.
			subtitle = strings.TrimSpace(link.Closest("div").Next().Find("a").First().Text())
		}
		if subtitle == title || e.denied(subtitle) {
			subtitle = ""
		}

		content := title
		if subtitle != "" {
			content = title + "\n\n" + subtitle
		}

		items = append(items, RawItem{
			Title:      title,
			RawContent: content,
			Subtitle:   subtitle,
			Link:       href,
			DateHints:  e.containerDateHints(container, cfg.Date, href),
		})
	})
	return items
}

// containerDateHints collects date candidates from a container in priority
// order: the date element's datetime attribute, its text, then any span
// whose text looks temporal, then the link itself.
func (e *Extractor) containerDateHints(container *goquery.Selection, dateSel, href string) []DateHint {
	var hints []DateHint
	if dateSel == "" {
		dateSel = "time"
	}

	if dt, ok := container.Find(dateSel + "[datetime]").First().Attr("datetime"); ok {
		hints = append(hints, DateHint{Kind: HintISO, Value: dt})
	}
	if text := strings.TrimSpace(container.Find(dateSel).First().Text()); text != "" {
		hints = append(hints, DateHint{Kind: HintText, Value: text})
	}
	container.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if hasTemporalKeyword(text) {
			hints = append(hints, DateHint{Kind: HintText, Value: text})
			return false
		}
		return true
	})
	if href != "" {
		hints = append(hints, DateHint{Kind: HintURL, Value: href})
	}
	return hints
}

// extractPostContainers handles .post-preview / .post blocks, the classic
// blog archive layout with a title element and subtitle paragraphs.
func (e *Extractor) extractPostContainers(sel *goquery.Selection, baseURL string) []RawItem {
	var items []RawItem
	sel.Each(func(_ int, container *goquery.Selection) {
		title := strings.TrimSpace(container.Find(".post-title, h3, .title, h2").First().Text())
		if len(title) < minLinkTitleLen || e.denied(title) {
			return
		}

		var parts []string
		container.Find(".post-subtitle, p, .summary, .excerpt").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len(text) > 10 && text != title && !e.denied(text) {
				parts = append(parts, text)
			}
		})

		link, ok := container.Find(`a[href*="/p/"]`).First().Attr("href")
		if !ok {
			link, ok = container.Find("a[href]").First().Attr("href")
		}
		if !ok {
			link = slugLink(baseURL, title)
		}

		content := title
		if len(parts) > 0 {
			content = title + "\n\n" + strings.Join(parts, "\n")
		}

		items = append(items, RawItem{
			Title:      title,
			RawContent: content,
			Subtitle:   strings.Join(parts, "\n"),
			Link:       link,
			DateHints:  e.containerDateHints(container, "", link),
		})
	})
	return items
}

// extractHeadings treats each h2 as a title and scans its enclosing div
// for content and a link. This is the loosest tier and only fires when
// nothing more structured matched.
func (e *Extractor) extractHeadings(sel *goquery.Selection, baseURL string) []RawItem {
	var items []RawItem
	sel.Each(func(_ int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if len(title) < minHeadingTitleLen || e.denied(title) {
			return
		}

		container := heading.Closest("div")

		var parts []string
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len(text) > 20 && text != title && !e.denied(text) {
				parts = append(parts, text)
			}
		})

		link, ok := container.Find("a[href]").First().Attr("href")
		if !ok {
			link = slugLink(baseURL, title)
		}

		content := title
		if len(parts) > 0 {
			content = title + "\n\n" + strings.Join(parts, "\n")
		}

		items = append(items, RawItem{
			Title:      title,
			RawContent: content,
			Subtitle:   strings.Join(parts, "\n"),
			Link:       link,
			DateHints:  e.containerDateHints(container, "", link),
		})
	})
	return items
}

// extractCards handles generic card containers (cursor-pointer classes and
// bare article elements) whose title is an h2 inside the card.
func (e *Extractor) extractCards(sel *goquery.Selection, baseURL string) []RawItem {
	var items []RawItem
	seen := make(map[string]bool)
	sel.Each(func(_ int, container *goquery.Selection) {
		title := strings.TrimSpace(container.Find("h2").First().Text())
		if title == "" {
			title = strings.TrimSpace(container.Find("h3").First().Text())
		}
		if len(title) < minHeadingTitleLen || e.denied(title) || seen[title] {
			return
		}
		seen[title] = true

		var subtitle string
		container.Find("p, h4").EachWithBreak(func(_ int, p *goquery.Selection) bool {
			text := strings.TrimSpace(p.Text())
			if len(text) > 10 && text != title && !e.denied(text) {
				subtitle = text
				return false
			}
			return true
		})

		link, ok := container.Find("a[href]").First().Attr("href")
		if !ok {
			link = slugLink(baseURL, title)
		}

		content := title
		if subtitle != "" {
			content = title + "\n\n" + subtitle
		}

		items = append(items, RawItem{
			Title:      title,
			RawContent: content,
			Subtitle:   subtitle,
			Link:       link,
			DateHints:  e.containerDateHints(container, "", link),
		})
	})
	return items
}

func (e *Extractor) denied(text string) bool {
	for _, entry := range e.Denylist {
		if strings.Contains(text, entry) {
			return true
		}
	}
	return false
}

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe    = regexp.MustCompile(`\s+`)
	slugCollapseRe = regexp.MustCompile(`-+`)
	yearRe         = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// slugLink fabricates a page-relative link for items whose card carries no
// anchor, by slugifying the title under the listing page's path.
func slugLink(baseURL, title string) string {
	slug := strings.ToLower(title)
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugSpaceRe.ReplaceAllString(slug, "-")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	base := baseURL
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSuffix(base, "/")
	return base + "/" + slug
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// hasTemporalKeyword reports whether free text plausibly mentions a date:
// a relative phrase, a month name or a four-digit year.
func hasTemporalKeyword(text string) bool {
	if text == "" || len(text) > 60 {
		return false
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "ago") {
		return true
	}
	for _, month := range monthNames {
		if strings.Contains(lower, month) {
			return true
		}
	}
	return yearRe.MatchString(text)
}
