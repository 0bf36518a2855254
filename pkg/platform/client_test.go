package platform

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout/worker/config"
)

func TestParseISO8601Duration(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"PT1H30M", 90 * 60, true},
		{"PT5M30S", 5*60 + 30, true},
		{"PT30S", 30, true},
		{"", 0, false},
		{"garbage", 0, false},
	}
	for _, c := range cases {
		got, ok := parseISO8601Duration(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}

func TestJoinIDs(t *testing.T) {
	assert.Equal(t, "a,b,c", joinIDs([]string{"a", "b", "c"}))
	assert.Equal(t, "solo", joinIDs([]string{"solo"}))
}

func TestJitteredBackoff_BoundedByMax(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := jitteredBackoff(attempt, time.Second, 5*time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	quota := NewQuotaGovernor(1000, 0, 0)
	client, err := NewClient(config.PlatformConfig{APIKey: "test-key", BaseURL: srv.URL}, quota)
	require.NoError(t, err)
	return client, srv
}

func TestClient_GetVideoStats_Success(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"video_id": "v1", "view_count": 1000, "duration": "PT5M30S"},
			},
		})
	})
	defer srv.Close()

	stats, err := client.GetVideoStats(t.Context(), []string{"v1"})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "v1", stats[0].VideoID)
	assert.Equal(t, int64(1000), stats[0].ViewCount)
	require.NotNil(t, stats[0].Duration)
	assert.Equal(t, 330, *stats[0].Duration)
}

func TestClient_GetVideoStats_TooManyIDs(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called when the batch limit is exceeded")
	})
	defer srv.Close()

	ids := make([]string, MaxBatchIDs+1)
	for i := range ids {
		ids[i] = "v"
	}
	_, err := client.GetVideoStats(t.Context(), ids)
	assert.Error(t, err)
}

func TestClient_ForbiddenTranslatesToQuotaExceeded(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	defer srv.Close()

	_, err := client.GetChannelInfo(t.Context(), []string{"ch1"})
	require.Error(t, err)
	var qe *QuotaExceededError
	assert.ErrorAs(t, err, &qe)
}

func TestClient_NonRetryable4xxDoesNotRetry(t *testing.T) {
	calls := 0
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})
	defer srv.Close()

	_, err := client.GetChannelInfo(t.Context(), []string{"ch1"})
	require.Error(t, err)
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, calls, "a non-retryable 4xx must not be retried")
}

func TestClient_QuotaGovernorBlocksBeforeRequest(t *testing.T) {
	calls := 0
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	defer srv.Close()
	client.quota = NewQuotaGovernor(0, 0, 0)

	_, err := client.GetChannelInfo(t.Context(), []string{"ch1"})
	require.Error(t, err)
	var qe *QuotaExceededError
	assert.ErrorAs(t, err, &qe)
	assert.Equal(t, 0, calls, "a pre-checked quota failure must never reach the network")
}

func TestClient_WrapTransportStillReachesServer(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
	})
	defer srv.Close()

	wrapped := false
	client.WrapTransport(func(c *http.Client) *http.Client {
		wrapped = true
		return c
	})
	assert.True(t, wrapped, "WrapTransport must invoke the provided wrapper")

	_, err := client.GetVideoStats(t.Context(), []string{"v1"})
	require.NoError(t, err, "the client must still function after WrapTransport swaps its http.Client")
}
