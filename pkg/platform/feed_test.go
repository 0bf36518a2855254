package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <videoId>abc123</videoId>
    <title>How to Build a PC</title>
    <published>2026-07-20T10:00:00Z</published>
    <group>
      <thumbnail url="https://img.example/abc123.jpg"/>
      <community>
        <statistics views="54321"/>
      </community>
    </group>
  </entry>
  <entry>
    <videoId>def456</videoId>
    <title>No stats entry</title>
    <published>2026-07-21T10:00:00Z</published>
    <group>
      <thumbnail url="https://img.example/def456.jpg"/>
    </group>
  </entry>
  <entry>
    <videoId>bad789</videoId>
    <title>Malformed published date</title>
    <published>not-a-date</published>
    <group>
      <thumbnail url="https://img.example/bad789.jpg"/>
    </group>
  </entry>
</feed>`

func TestParseFeed_ExtractsFields(t *testing.T) {
	items, err := parseFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, items, 2, "the entry with an unparseable published date is skipped")

	first := items[0]
	assert.Equal(t, "abc123", first.VideoID)
	assert.Equal(t, "How to Build a PC", first.Title)
	assert.Equal(t, "https://img.example/abc123.jpg", first.ThumbnailURL)
	require.NotNil(t, first.ViewCount)
	assert.Equal(t, int64(54321), *first.ViewCount)
}

func TestParseFeed_MissingStatisticsLeavesViewCountNil(t *testing.T) {
	items, err := parseFeed(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[1].ViewCount)
}

func TestParseFeed_InvalidXML(t *testing.T) {
	_, err := parseFeed(strings.NewReader("not xml at all <<<"))
	assert.Error(t, err)
}

func TestParseFeed_EmptyFeed(t *testing.T) {
	items, err := parseFeed(strings.NewReader(`<feed></feed>`))
	require.NoError(t, err)
	assert.Empty(t, items)
}
