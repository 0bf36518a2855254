package feeders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendscout/worker/config"
	"github.com/trendscout/worker/internal/models"
	"github.com/trendscout/worker/internal/repository"
	"github.com/trendscout/worker/pkg/platform"
)

func TestOrderForWindow(t *testing.T) {
	assert.Equal(t, platform.OrderDate, orderForWindow(models.Window24h))
	assert.Equal(t, platform.OrderViewCount, orderForWindow(models.Window7d))
	assert.Equal(t, platform.OrderViewCount, orderForWindow(models.Window30d))
	assert.Equal(t, platform.OrderViewCount, orderForWindow(models.Window90d))
}

func TestTotalAdded_NoPriorState(t *testing.T) {
	assert.Equal(t, 5, totalAdded(nil, 5))
}

func TestTotalAdded_AccumulatesWithPriorState(t *testing.T) {
	prior := &models.IngestionState{TotalVideosAdded: 20}
	assert.Equal(t, 25, totalAdded(prior, 5))
}

// fakeIngestionStateRepo is an in-memory IngestionStateRepository used to
// verify cursor advancement without a database.
type fakeIngestionStateRepo struct {
	states map[string]*models.IngestionState
}

func newFakeIngestionStateRepo() *fakeIngestionStateRepo {
	return &fakeIngestionStateRepo{states: make(map[string]*models.IngestionState)}
}

func (r *fakeIngestionStateRepo) Get(ctx context.Context, feeder string) (*models.IngestionState, error) {
	s, ok := r.states[feeder]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (r *fakeIngestionStateRepo) Upsert(ctx context.Context, s *models.IngestionState) error {
	r.states[s.Feeder] = s
	return nil
}

func TestIntentSeedFeeder_AdvancesCursorAndWraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{}})
	}))
	defer srv.Close()

	quota := platform.NewQuotaGovernor(100000, 0, 0)
	client, err := platform.NewClient(config.PlatformConfig{APIKey: "k", BaseURL: srv.URL}, quota)
	require.NoError(t, err)

	state := newFakeIngestionStateRepo()
	feeder := NewIntentSeedFeeder(client, state, 5)

	ch, runErr := feeder.Run(context.Background(), models.Window7d)
	require.NoError(t, runErr)
	for range ch {
	}

	st, err := state.Get(context.Background(), intentSeedFeederName)
	require.NoError(t, err)
	assert.Equal(t, 5, st.CursorPosition)

	// Running again advances by another 5, still within bounds.
	ch, runErr = feeder.Run(context.Background(), models.Window7d)
	require.NoError(t, runErr)
	for range ch {
	}
	st, err = state.Get(context.Background(), intentSeedFeederName)
	require.NoError(t, err)
	assert.Equal(t, 10, st.CursorPosition)

	// Starting two seeds before the end of the list wraps the cursor to 3.
	st.CursorPosition = len(intentSeedsV1) - 2
	ch, runErr = feeder.Run(context.Background(), models.Window7d)
	require.NoError(t, runErr)
	for range ch {
	}
	st, err = state.Get(context.Background(), intentSeedFeederName)
	require.NoError(t, err)
	assert.Equal(t, 3, st.CursorPosition)
}
