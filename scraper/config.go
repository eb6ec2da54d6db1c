// Package scraper holds the selector configuration consumed by the HTML
// extraction cascade, including the registered table of site-specific
// rules.
package scraper

import "strings"

// SelectorConfig defines how to pull article blocks out of a particular
// page shape. Every field is optional; empty fields fall back to the
// extractor's defaults.
type SelectorConfig struct {
	Article string `json:"article,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
	Link    string `json:"link,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Empty reports whether the config carries no selectors at all.
func (c SelectorConfig) Empty() bool {
	return c == SelectorConfig{}
}

// SiteRule binds a URL pattern to a known page shape, so matching sources
// take the explicit extraction path without per-source configuration.
type SiteRule struct {
	URLPattern string
	Config     SelectorConfig
}

var siteRules = []SiteRule{
	{
		// Substack-style weekly digest pages.
		URLPattern: "lastweekin.ai",
		Config: SelectorConfig{
			Article: `div[role="article"]`,
			Link:    `a[data-testid="post-preview-title"]`,
			Date:    "time",
		},
	},
}

// RegisterSiteRule appends a rule to the site table. Rules are consulted in
// registration order; the first pattern contained in the page URL wins.
func RegisterSiteRule(rule SiteRule) {
	siteRules = append(siteRules, rule)
}

// MatchSite returns the selector config registered for the given page URL.
func MatchSite(pageURL string) (SelectorConfig, bool) {
	for _, rule := range siteRules {
		if strings.Contains(pageURL, rule.URLPattern) {
			return rule.Config, true
		}
	}
	return SelectorConfig{}, false
}
