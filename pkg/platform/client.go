package platform

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/trendscout/worker/config"
)

// maxRetries and baseDelay bound the retry loop applied to every request;
// maxDelay caps the exponential backoff before jitter is applied.
const (
	maxRetries = 3
	baseDelay  = time.Second
	maxDelay   = 30 * time.Second
)

// Client wraps the video platform's public API with authentication,
// quota governance, retries, and a circuit breaker.
type Client struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	circuitBreaker *CircuitBreaker
	quota          *QuotaGovernor
}

// NewClient builds a platform client. The quota governor is owned by the
// caller (the composition root) and shared across every component that
// talks to the platform, so a single process-wide budget is enforced.
func NewClient(cfg config.PlatformConfig, quota *QuotaGovernor) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("platform API key is required")
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
		quota:          quota,
	}, nil
}

// WrapTransport replaces the client's underlying http.Client with the
// result of applying wrap to it, letting the composition root instrument
// outbound requests (e.g. with OpenTelemetry) without this package
// depending on a tracing library itself.
func (c *Client) WrapTransport(wrap func(*http.Client) *http.Client) {
	c.httpClient = wrap(c.httpClient)
}

// SearchVideos runs a single search_videos call. Cost is charged against
// the quota governor before the request is issued.
func (c *Client) SearchVideos(ctx context.Context, params SearchParams) ([]SearchResult, error) {
	if err := c.quota.Consume(CostSearch); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", params.Query)
	maxResults := params.MaxResults
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}
	q.Set("maxResults", strconv.Itoa(maxResults))
	if params.Order != "" {
		q.Set("order", string(params.Order))
	}
	if params.PublishedAfter != nil {
		q.Set("publishedAfter", params.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if params.PublishedBefore != nil {
		q.Set("publishedBefore", params.PublishedBefore.UTC().Format(time.RFC3339))
	}
	if params.Region != "" {
		q.Set("regionCode", params.Region)
	}
	if params.Language != "" {
		q.Set("relevanceLanguage", params.Language)
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/search", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Items []struct {
			VideoID      string    `json:"video_id"`
			ChannelID    string    `json:"channel_id"`
			ChannelTitle string    `json:"channel_title"`
			Title        string    `json:"title"`
			ThumbnailURL string    `json:"thumbnail_url"`
			PublishedAt  time.Time `json:"published_at"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]SearchResult, 0, len(body.Items))
	for _, item := range body.Items {
		results = append(results, SearchResult{
			VideoID:      item.VideoID,
			ChannelID:    item.ChannelID,
			ChannelTitle: item.ChannelTitle,
			Title:        item.Title,
			ThumbnailURL: item.ThumbnailURL,
			PublishedAt:  item.PublishedAt,
		})
	}
	return results, nil
}

// GetVideoStats fetches statistics for up to MaxBatchIDs videos in a single
// batched call.
func (c *Client) GetVideoStats(ctx context.Context, videoIDs []string) ([]Stats, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	if len(videoIDs) > MaxBatchIDs {
		return nil, fmt.Errorf("GetVideoStats: %d ids exceeds batch limit %d", len(videoIDs), MaxBatchIDs)
	}
	if err := c.quota.Consume(CostVideoStats); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ids", joinIDs(videoIDs))

	resp, err := c.doRequest(ctx, http.MethodGet, "/videos", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Items []struct {
			VideoID      string `json:"video_id"`
			ViewCount    int64  `json:"view_count"`
			LikeCount    *int64 `json:"like_count"`
			CommentCount *int64 `json:"comment_count"`
			Duration     string `json:"duration"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding video stats response: %w", err)
	}

	stats := make([]Stats, 0, len(body.Items))
	for _, item := range body.Items {
		var duration *int
		if d, ok := parseISO8601Duration(item.Duration); ok {
			duration = &d
		}
		stats = append(stats, Stats{
			VideoID:      item.VideoID,
			ViewCount:    item.ViewCount,
			LikeCount:    item.LikeCount,
			CommentCount: item.CommentCount,
			Duration:     duration,
		})
	}
	return stats, nil
}

// GetChannelInfo fetches metadata for up to MaxBatchIDs channels in a
// single batched call.
func (c *Client) GetChannelInfo(ctx context.Context, channelIDs []string) ([]ChannelInfo, error) {
	if len(channelIDs) == 0 {
		return nil, nil
	}
	if len(channelIDs) > MaxBatchIDs {
		return nil, fmt.Errorf("GetChannelInfo: %d ids exceeds batch limit %d", len(channelIDs), MaxBatchIDs)
	}
	if err := c.quota.Consume(CostChannelInfo); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("ids", joinIDs(channelIDs))

	resp, err := c.doRequest(ctx, http.MethodGet, "/channels", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Items []struct {
			ChannelID       string     `json:"channel_id"`
			Title           string     `json:"title"`
			SubscriberCount *int64     `json:"subscriber_count"`
			PublishedAt     *time.Time `json:"published_at"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding channel info response: %w", err)
	}

	infos := make([]ChannelInfo, 0, len(body.Items))
	for _, item := range body.Items {
		infos = append(infos, ChannelInfo{
			ChannelID:          item.ChannelID,
			Title:               item.Title,
			SubscriberCount:     item.SubscriberCount,
			ChannelPublishedAt:  item.PublishedAt,
		})
	}
	return infos, nil
}

// FetchChannelFeed fetches a channel's free, unauthenticated feed. It does
// not consume quota: CostFreeFeed is zero.
func (c *Client) FetchChannelFeed(ctx context.Context, channelID string) ([]FeedItem, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/feeds/"+url.PathEscape(channelID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return parseFeed(resp.Body)
}

// doRequest performs an authenticated HTTP request with retries and
// circuit breaking.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) (*http.Response, error) {
	if err := c.circuitBreaker.Allow(); err != nil {
		return nil, err
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, method, reqURL, http.NoBody)
		if reqErr != nil {
			return nil, fmt.Errorf("building request: %w", reqErr)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey) // #nosec G101 (API key, not hardcoded secret)

		resp, lastErr = c.httpClient.Do(req)
		if lastErr != nil {
			c.circuitBreaker.RecordFailure()
			if attempt < maxRetries-1 {
				time.Sleep(jitteredBackoff(attempt, baseDelay, maxDelay))
				continue
			}
			return nil, &TransportError{Attempts: maxRetries, Err: lastErr}
		}

		status := resp.StatusCode
		if status >= 500 {
			// every 5xx takes the retryable path below
			status = http.StatusServiceUnavailable
		}
		switch status {
		case http.StatusOK, http.StatusNotFound:
			c.circuitBreaker.RecordSuccess()
			return resp, nil
		case http.StatusForbidden:
			resp.Body.Close()
			c.circuitBreaker.RecordSuccess()
			return nil, &QuotaExceededError{Message: "platform reports quota exhausted"}
		case http.StatusTooManyRequests:
			resp.Body.Close()
			delay := jitteredBackoff(attempt, baseDelay, maxDelay)
			if attempt < maxRetries-1 {
				time.Sleep(delay)
				continue
			}
			return nil, &RateLimitError{Message: "rate limited by platform", RetryAfter: int(delay.Seconds())}
		case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
			resp.Body.Close()
			c.circuitBreaker.RecordFailure()
			if attempt < maxRetries-1 {
				time.Sleep(jitteredBackoff(attempt, baseDelay, maxDelay))
				continue
			}
			return nil, &TransportError{Attempts: maxRetries, Err: fmt.Errorf("platform unavailable: status %d", resp.StatusCode)}
		default:
			c.circuitBreaker.RecordSuccess()
			body := resp.StatusCode
			resp.Body.Close()
			return nil, &APIError{StatusCode: body, Message: "unexpected platform response"}
		}
	}

	return resp, fmt.Errorf("request failed after %d attempts", maxRetries)
}

// jitteredBackoff computes exponential backoff with decorrelated jitter:
// delay/2 + random(0, delay/2), using crypto/rand for thread safety.
func jitteredBackoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	if attempt > 62 {
		attempt = 62
	}

	delay := baseDelay * time.Duration(1<<uint(attempt))
	if delay > maxDelay {
		delay = maxDelay
	}

	halfDelay := delay / 2
	if halfDelay <= 0 {
		return delay * 3 / 4
	}

	jitterBig, err := rand.Int(rand.Reader, big.NewInt(int64(halfDelay)))
	if err != nil {
		return delay * 3 / 4
	}

	return halfDelay + time.Duration(jitterBig.Int64())
}

func joinIDs(ids []string) string {
	out := ids[0]
	for _, id := range ids[1:] {
		out += "," + id
	}
	return out
}

// parseISO8601Duration parses the subset of ISO-8601 durations the platform
// emits for video length (PT#H#M#S).
func parseISO8601Duration(s string) (int, bool) {
	if s == "" || s[0] != 'P' {
		return 0, false
	}
	var total int
	var num int
	var haveNum bool
	inTime := false
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'T':
			inTime = true
		case c >= '0' && c <= '9':
			num = num*10 + int(c-'0')
			haveNum = true
		case c == 'H' && inTime && haveNum:
			total += num * 3600
			num, haveNum = 0, false
		case c == 'M' && inTime && haveNum:
			total += num * 60
			num, haveNum = 0, false
		case c == 'S' && inTime && haveNum:
			total += num
			num, haveNum = 0, false
		case c == 'D' && haveNum:
			total += num * 86400
			num, haveNum = 0, false
		default:
			return 0, false
		}
	}
	return total, true
}
