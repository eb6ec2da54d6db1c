package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorConfig_Empty(t *testing.T) {
	assert.True(t, SelectorConfig{}.Empty())
	assert.False(t, SelectorConfig{Article: ".card"}.Empty())
}

func TestMatchSite_KnownHost(t *testing.T) {
	cfg, ok := MatchSite("https://lastweekin.ai/archive")
	require.True(t, ok)
	assert.Equal(t, `div[role="article"]`, cfg.Article)
	assert.Equal(t, `a[data-testid="post-preview-title"]`, cfg.Link)
}

func TestMatchSite_UnknownHost(t *testing.T) {
	_, ok := MatchSite("https://example.com/blog")
	assert.False(t, ok)
}

func TestRegisterSiteRule(t *testing.T) {
	RegisterSiteRule(SiteRule{
		URLPattern: "registered-test.example",
		Config:     SelectorConfig{Article: ".entry"},
	})
	cfg, ok := MatchSite("https://registered-test.example/posts")
	require.True(t, ok)
	assert.Equal(t, ".entry", cfg.Article)
}
