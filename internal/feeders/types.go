// Package feeders implements the four candidate-generation strategies that
// produce search queries (or, for the free-feed strategy, direct results)
// feeding the admission gate.
package feeders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/pkg/platform"
)

// ErrQuotaExceeded wraps platform.QuotaExceededError at the feeder
// boundary so a runner can abandon just the current feeder via errors.Is
// without depending on the platform package's exact error shape leaking
// further upstream than necessary.
var ErrQuotaExceeded = errors.New("feeder: quota exceeded")

// Candidate is a discovered search/feed result tagged with its origin
// feeder, ready to pass through gating.
type Candidate struct {
	Feeder       string
	Seed         string
	VideoID      string
	ChannelID    string
	ChannelTitle string
	Title        string
	ThumbnailURL *string
	PublishedAt  time.Time
	ViewCount    *int64
}

// Feeder generates candidates for a window. Run returns a channel the
// caller ranges over until it closes; if the channel closes early because
// the platform's quota was exhausted mid-run, Run's returned error wraps
// ErrQuotaExceeded (checkable via errors.As with *platform.QuotaExceededError
// or errors.Is with ErrQuotaExceeded).
type Feeder interface {
	Name() string
	Run(ctx context.Context, window models.Window) (<-chan Candidate, error)
}

// wrapQuota wraps a platform quota error so callers can check with
// errors.Is(err, ErrQuotaExceeded) regardless of which feeder produced it.
func wrapQuota(feederName string, err error) error {
	var qe *platform.QuotaExceededError
	if errors.As(err, &qe) {
		return fmt.Errorf("%s: %w: %w", feederName, ErrQuotaExceeded, qe)
	}
	return err
}
