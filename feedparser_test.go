package feedmill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example Blog</title>
<link>https://blog.example.com</link>
<item>
<title><![CDATA[First Post]]></title>
<link>https://blog.example.com/first-post</link>
<description><![CDATA[<p>Body of the first post.</p>]]></description>
<pubDate>Sat, 18 May 2024 10:00:00 +0000</pubDate>
</item>
<item>
<title></title>
<description></description>
</item>
</channel>
</rss>`

const sampleAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
<title>Example Feed</title>
<entry>
<title>Atom Entry One</title>
<link href="https://blog.example.com/atom-entry"/>
<id>urn:uuid:1</id>
<summary>Summary of the atom entry.</summary>
<updated>2024-05-18T10:00:00Z</updated>
</entry>
</feed>`

func TestParseFeed_RSS(t *testing.T) {
	result, err := ParseFeed(sampleRSS)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Skipped)

	item := result.Items[0]
	assert.Equal(t, "First Post", item.Title)
	assert.Equal(t, "https://blog.example.com/first-post", item.Link)
	assert.Contains(t, item.RawContent, "Body of the first post.")

	require.NotEmpty(t, item.DateHints)
	assert.Equal(t, HintTime, item.DateHints[0].Kind)
	assert.Equal(t, HintURL, item.DateHints[len(item.DateHints)-1].Kind)
}

func TestParseFeed_Atom(t *testing.T) {
	result, err := ParseFeed(sampleAtom)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, "Atom Entry One", item.Title)
	assert.Equal(t, "https://blog.example.com/atom-entry", item.Link)
	assert.Equal(t, "Summary of the atom entry.", item.RawContent)

	require.NotEmpty(t, item.DateHints)
	assert.Equal(t, HintTime, item.DateHints[0].Kind)
}

func TestParseFeed_Malformed(t *testing.T) {
	_, err := ParseFeed("this is not a feed")
	assert.Error(t, err)
}

func TestParseFeed_TitleOnlyItemKept(t *testing.T) {
	payload := `<?xml version="1.0"?>
<rss version="2.0"><channel><title>T</title>
<item><title>Just a headline</title><link>https://blog.example.com/x</link></item>
</channel></rss>`
	result, err := ParseFeed(payload)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Just a headline", result.Items[0].Title)
	assert.Equal(t, 0, result.Skipped)
}
