package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

func TestFeedbackCounters(t *testing.T) {
	ctx := context.Background()

	t.Run("FreshCountersAreZero", func(t *testing.T) {
		env := newTestEnv(shopCatalog())

		metrics, err := env.feedback.Metrics(ctx)
		require.NoError(t, err)
		assert.Zero(t, metrics.Shows)
		assert.Zero(t, metrics.Clicks)
		assert.Zero(t, metrics.CTR)
	})

	t.Run("CTRIsClicksOverShows", func(t *testing.T) {
		env := newTestEnv(shopCatalog())

		require.NoError(t, env.feedback.MarkShown(ctx, "u1", []string{"mag-b6", "melatonin", "omega-3"}))
		require.NoError(t, env.feedback.MarkClicked(ctx, "u1", "mag-b6"))

		metrics, err := env.feedback.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), metrics.Shows)
		assert.Equal(t, int64(1), metrics.Clicks)
		assert.InDelta(t, 1.0/3.0, metrics.CTR, 1e-9)
	})

	t.Run("ClicksWithoutShowsKeepCTRZero", func(t *testing.T) {
		env := newTestEnv(shopCatalog())

		require.NoError(t, env.feedback.MarkClicked(ctx, "u1", "mag-b6"))

		metrics, err := env.feedback.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), metrics.Clicks)
		assert.Zero(t, metrics.CTR)
	})

	t.Run("ShowsAccumulateAcrossUsers", func(t *testing.T) {
		env := newTestEnv(shopCatalog())

		require.NoError(t, env.feedback.MarkShown(ctx, "u1", []string{"mag-b6"}))
		require.NoError(t, env.feedback.MarkShown(ctx, "u2", []string{"melatonin", "omega-3"}))

		metrics, err := env.feedback.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), metrics.Shows)
	})
}

func TestFeedbackEventLog(t *testing.T) {
	ctx := context.Background()

	t.Run("MarkShownAppendsEvent", func(t *testing.T) {
		env := newTestEnv(shopCatalog())

		require.NoError(t, env.feedback.MarkShown(ctx, "u1", []string{"mag-b6", "melatonin"}))

		events, err := env.events.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventRecoShown, events[0].Kind)

		payload, err := events[0].DecodePayload()
		require.NoError(t, err)
		assert.Equal(t, models.RecoShownPayload{Items: []string{"mag-b6", "melatonin"}}, payload)
	})

	t.Run("MarkClickedAppendsEventAndInvalidates", func(t *testing.T) {
		env := newTestEnv(shopCatalog())
		require.NoError(t, env.kv.Set(ctx, userCacheKey("u1"), []models.Recommendation{{ItemID: "stale"}}, 0))

		require.NoError(t, env.feedback.MarkClicked(ctx, "u1", "mag-b6"))

		events, err := env.events.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventRecoClicked, events[0].Kind)

		var cached []models.Recommendation
		assert.ErrorIs(t, env.kv.Get(ctx, userCacheKey("u1"), &cached), store.ErrCacheMiss)
	})

	t.Run("ClickOnlyInvalidatesTheClicker", func(t *testing.T) {
		env := newTestEnv(shopCatalog())
		require.NoError(t, env.kv.Set(ctx, userCacheKey("u2"), []models.Recommendation{{ItemID: "kept"}}, 0))

		require.NoError(t, env.feedback.MarkClicked(ctx, "u1", "mag-b6"))

		var cached []models.Recommendation
		require.NoError(t, env.kv.Get(ctx, userCacheKey("u2"), &cached))
		assert.Equal(t, "kept", cached[0].ItemID)
	})
}

// failingEventLog rejects every append; reads come back empty.
type failingEventLog struct{}

func (failingEventLog) Append(ctx context.Context, event models.Event) error {
	return assert.AnError
}

func (failingEventLog) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	return nil, nil
}

func (failingEventLog) ListAll(ctx context.Context) ([]models.Event, error) {
	return nil, nil
}

func TestCountersFollowTheEventLog(t *testing.T) {
	ctx := context.Background()

	t.Run("FailedShownAppendLeavesShowsUntouched", func(t *testing.T) {
		feedback := NewFeedbackService(failingEventLog{}, store.NewMemoryKV(), nil, quietLogger(), testMetrics())

		require.Error(t, feedback.MarkShown(ctx, "u1", []string{"mag-b6", "melatonin", "omega-3"}))

		metrics, err := feedback.Metrics(ctx)
		require.NoError(t, err)
		assert.Zero(t, metrics.Shows)
		assert.Zero(t, metrics.CTR)
	})

	t.Run("FailedClickAppendLeavesClicksUntouched", func(t *testing.T) {
		feedback := NewFeedbackService(failingEventLog{}, store.NewMemoryKV(), nil, quietLogger(), testMetrics())

		require.Error(t, feedback.MarkClicked(ctx, "u1", "mag-b6"))

		metrics, err := feedback.Metrics(ctx)
		require.NoError(t, err)
		assert.Zero(t, metrics.Clicks)
	})
}
