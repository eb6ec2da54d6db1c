package feedmill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkemp/feedmill/scraper"
)

const digestPageHTML = `<html><body>
<div role="article">
  <div><a data-testid="post-preview-title" href="/p/issue-123">Last Week in AI #123</a></div>
  <div><a href="/p/issue-123">Covering the latest research and tools</a></div>
  <time datetime="2024-05-18T12:00:00Z">May 18</time>
</div>
<div role="article">
  <div><a data-testid="post-preview-title" href="/p/issue-122">Last Week in AI #122</a></div>
  <div><a href="/p/issue-122">More model releases</a></div>
  <time datetime="2024-05-11T12:00:00Z">May 11</time>
</div>
</body></html>`

func TestExtract_SiteRule(t *testing.T) {
	items, err := NewExtractor().Extract(digestPageHTML, "https://lastweekin.ai", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Last Week in AI #123", first.Title)
	assert.Equal(t, "/p/issue-123", first.Link)
	assert.Equal(t, "Covering the latest research and tools", first.Subtitle)
	assert.Contains(t, first.RawContent, "Covering the latest research and tools")

	require.NotEmpty(t, first.DateHints)
	assert.Equal(t, HintISO, first.DateHints[0].Kind)
	assert.Equal(t, "2024-05-18T12:00:00Z", first.DateHints[0].Value)
}

func TestExtract_ExplicitOverrides(t *testing.T) {
	html := `<div class="story">
  <a href="/p/custom-one">Custom Story Title</a>
  <p class="blurb">A short blurb about it.</p>
</div>`
	cfg := &scraper.SelectorConfig{Article: ".story", Content: ".blurb"}
	items, err := NewExtractor().Extract(html, "https://example.com/archive", cfg)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Custom Story Title", items[0].Title)
	assert.Equal(t, "A short blurb about it.", items[0].Subtitle)
}

func TestExtract_PostPreviewContainers(t *testing.T) {
	html := `<html><body>
<div class="post-preview">
  <h3>Understanding Transformers</h3>
  <p>A long walkthrough of attention mechanisms.</p>
  <a href="/p/understanding-transformers">read</a>
</div>
<div class="post-preview">
  <h3>Diffusion Models Explained</h3>
  <p>From noise schedules to samplers.</p>
  <a href="/p/diffusion-models">read</a>
</div>
</body></html>`
	items, err := NewExtractor().Extract(html, "https://example.com", nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Understanding Transformers", items[0].Title)
	assert.Equal(t, "/p/understanding-transformers", items[0].Link)
	assert.Contains(t, items[0].RawContent, "attention mechanisms")
}

func TestExtract_CursorPointerCards(t *testing.T) {
	html := `<html><body>
<div class="cursor-pointer">
  <h2>Big Model Release This Week</h2>
  <p>The lab shipped a new flagship model.</p>
  <a href="/p/big-release">more</a>
</div>
</body></html>`
	items, err := NewExtractor().Extract(html, "https://example.com", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Big Model Release This Week", items[0].Title)
	assert.Equal(t, "The lab shipped a new flagship model.", items[0].Subtitle)
}

func TestExtract_HeadingFallbackWithSlugLink(t *testing.T) {
	html := `<html><body>
<div>
  <h2>Big AI News This Week</h2>
  <p>Several labs announced new models and benchmarks today.</p>
</div>
</body></html>`
	items, err := NewExtractor().Extract(html, "https://example.com/blog/", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Big AI News This Week", items[0].Title)
	assert.Equal(t, "https://example.com/blog/big-ai-news-this-week", items[0].Link)
}

func TestExtract_FirstMatchingSelectorWins(t *testing.T) {
	html := `<html><body>
<div class="post-preview">
  <h3>Post Preview Story</h3>
  <p>Something long enough to count as content.</p>
  <a href="/p/preview-story">read</a>
</div>
<div>
  <h2>Unrelated Heading Elsewhere</h2>
</div>
</body></html>`
	items, err := NewExtractor().Extract(html, "https://example.com", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Post Preview Story", items[0].Title)
}

func TestExtract_DenylistFiltersBoilerplate(t *testing.T) {
	html := `<html><body>
<div class="post-preview">
  <h3>Subscribe now</h3>
  <p>Get every issue in your inbox.</p>
</div>
<div class="post-preview">
  <h3>A Real Article Title</h3>
  <p>Actual editorial content lives here.</p>
  <a href="/p/real-article">read</a>
</div>
</body></html>`
	items, err := NewExtractor().Extract(html, "https://example.com", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A Real Article Title", items[0].Title)
}

func TestExtract_ShortTitlesSkipped(t *testing.T) {
	html := `<html><body>
<div>
  <h2>Short</h2>
  <p>This heading is too short to be an article title.</p>
</div>
</body></html>`
	items, err := NewExtractor().Extract(html, "https://example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExtract_NoMatchYieldsEmpty(t *testing.T) {
	items, err := NewExtractor().Extract("<html><body><p>nothing here</p></body></html>", "https://example.com", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSlugLink(t *testing.T) {
	assert.Equal(t,
		"https://example.com/blog/big-ai-news-this-week",
		slugLink("https://example.com/blog/?page=2", "Big AI News: This Week!"))
}

func TestHasTemporalKeyword(t *testing.T) {
	assert.True(t, hasTemporalKeyword("3 days ago"))
	assert.True(t, hasTemporalKeyword("May 18, 2024"))
	assert.True(t, hasTemporalKeyword("Published in 2023"))
	assert.False(t, hasTemporalKeyword("Share this post"))
	assert.False(t, hasTemporalKeyword(""))
}
