package feeders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trendscout/worker/pkg/platform"
)

func TestWrapQuota_PlatformQuotaError(t *testing.T) {
	err := wrapQuota("intent_seed", &platform.QuotaExceededError{Message: "exhausted"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestWrapQuota_OtherErrorPassesThrough(t *testing.T) {
	original := errors.New("network down")
	err := wrapQuota("intent_seed", original)
	assert.ErrorIs(t, err, original)
	assert.False(t, errors.Is(err, ErrQuotaExceeded))
}
