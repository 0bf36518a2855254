// Package gating implements the admission checks a freshly discovered video
// must pass before it is written to the store.
package gating

import (
	"context"
	"time"

	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
)

// RejectionReason names why a candidate was not admitted. The zero value,
// RejectionNone, means the candidate was admitted.
type RejectionReason string

const (
	RejectionNone        RejectionReason = ""
	RejectionDuplicate   RejectionReason = "duplicate"
	RejectionTooOld      RejectionReason = "too_old"
	RejectionChannelCap  RejectionReason = "channel_cap"
)

// Candidate is the minimal shape the gate needs to evaluate admission; it
// deliberately does not require a fully populated DiscoveredVideo.
type Candidate struct {
	VideoID     string
	ChannelID   string
	PublishedAt time.Time
}

// Config bounds the gate's per-channel rule. The age rule has no separate
// knob: a candidate is too old once it no longer qualifies for any window,
// i.e. older than the widest window's cutoff (90d).
type Config struct {
	// ChannelCapWindow is the lookback window used to count a channel's
	// already-admitted videos against MaxPerChannel.
	ChannelCapWindow time.Duration
	MaxPerChannel    int
}

// Gate evaluates admission rules in a fixed order: duplicate, then age,
// then per-channel cap. The first rule a candidate fails is its rejection
// reason; remaining rules are not evaluated.
type Gate struct {
	videos repository.VideoRepository
	cfg    Config
}

// New builds a Gate.
func New(videos repository.VideoRepository, cfg Config) *Gate {
	return &Gate{videos: videos, cfg: cfg}
}

// Evaluate reports whether a candidate is admitted and, if not, why.
func (g *Gate) Evaluate(ctx context.Context, c Candidate) (RejectionReason, error) {
	exists, err := g.videos.Exists(ctx, c.VideoID)
	if err != nil {
		return RejectionNone, err
	}
	if exists {
		return RejectionDuplicate, nil
	}

	ageDays := time.Since(c.PublishedAt).Hours() / 24
	if len(models.EligibleWindows(ageDays)) == 0 {
		return RejectionTooOld, nil
	}

	if g.cfg.MaxPerChannel > 0 {
		count, err := g.videos.CountOpenByChannel(ctx, c.ChannelID, g.cfg.ChannelCapWindow)
		if err != nil {
			return RejectionNone, err
		}
		if count >= g.cfg.MaxPerChannel {
			return RejectionChannelCap, nil
		}
	}

	return RejectionNone, nil
}
