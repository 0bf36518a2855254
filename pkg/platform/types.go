package platform

import "time"

// SearchOrder selects the ordering applied to a search_videos call.
type SearchOrder string

const (
	OrderRelevance SearchOrder = "relevance"
	OrderDate      SearchOrder = "date"
	OrderViewCount SearchOrder = "viewCount"
	OrderRating    SearchOrder = "rating"
)

// SearchParams bounds a single search_videos call.
type SearchParams struct {
	Query           string
	MaxResults      int // clamped to 50
	PublishedAfter  *time.Time
	PublishedBefore *time.Time
	Order           SearchOrder
	Region          string
	Language        string
}

// SearchResult is a single item returned by search_videos.
type SearchResult struct {
	VideoID      string
	ChannelID    string
	ChannelTitle string
	Title        string
	ThumbnailURL string
	PublishedAt  time.Time
}

// Stats is the per-video statistics payload returned by get_video_stats.
type Stats struct {
	VideoID      string
	ViewCount    int64
	LikeCount    *int64
	CommentCount *int64
	Duration     *int // seconds, parsed from ISO-8601 duration
}

// ChannelInfo is the per-channel metadata payload returned by
// get_channel_info.
type ChannelInfo struct {
	ChannelID          string
	Title              string
	SubscriberCount    *int64
	ChannelPublishedAt *time.Time
}

// FeedItem is an entry from the platform's free feed endpoint. ViewCount is
// only populated when the feed's statistics sub-element is present.
type FeedItem struct {
	VideoID      string
	Title        string
	PublishedAt  time.Time
	ThumbnailURL string
	ViewCount    *int64
}

// Cost units, per the platform's published pricing: batched low-cost
// endpoints are strongly preferred over per-item high-cost searches.
const (
	CostSearch      = 100
	CostVideoStats  = 1
	CostChannelInfo = 1
	CostFreeFeed    = 0
)

// MaxBatchIDs is the maximum number of IDs accepted per batched call.
const MaxBatchIDs = 50
