package platform

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

// feedDocument mirrors the Atom-with-media-extension document shape the
// platform's free, unauthenticated channel feed returns.
type feedDocument struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []feedEntry `xml:"entry"`
}

type feedEntry struct {
	VideoID     string       `xml:"videoId"`
	Title       string       `xml:"title"`
	Published   string       `xml:"published"`
	MediaGroup  mediaGroup   `xml:"group"`
}

type mediaGroup struct {
	Thumbnail  mediaThumbnail   `xml:"thumbnail"`
	Statistics *mediaStatistics `xml:"community>statistics"`
}

type mediaThumbnail struct {
	URL string `xml:"url,attr"`
}

type mediaStatistics struct {
	Views string `xml:"views,attr"`
}

// parseFeed decodes a free-feed XML document into FeedItems. Entries
// missing a parseable published timestamp are skipped rather than
// rejecting the whole feed: a single malformed entry should not drop an
// entire channel's feed.
func parseFeed(r io.Reader) ([]FeedItem, error) {
	var doc feedDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding feed xml: %w", err)
	}

	items := make([]FeedItem, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		published, err := time.Parse(time.RFC3339, e.Published)
		if err != nil {
			continue
		}

		item := FeedItem{
			VideoID:      e.VideoID,
			Title:        e.Title,
			PublishedAt:  published,
			ThumbnailURL: e.MediaGroup.Thumbnail.URL,
		}
		if e.MediaGroup.Statistics != nil {
			if views, err := strconv.ParseInt(e.MediaGroup.Statistics.Views, 10, 64); err == nil {
				item.ViewCount = &views
			}
		}
		items = append(items, item)
	}
	return items, nil
}
