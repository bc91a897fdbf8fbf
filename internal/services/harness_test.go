package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

// testEnv wires the services against in-process stores.
type testEnv struct {
	catalog  *store.MemoryCatalog
	events   *store.MemoryEventLog
	profiles *store.MemoryProfiles
	kv       *store.MemoryKV
	cfg      *config.RecoConfig

	matrix   *ItemMatrixService
	signals  *UserSignalService
	reco     *RecommendationService
	feedback *FeedbackService
	ingest   *EventService
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// testMetrics registers on a fresh registry so tests never collide.
func testMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func newTestEnv(items []models.Item) *testEnv {
	logger := quietLogger()

	catalog := store.NewMemoryCatalog(items)
	events := store.NewMemoryEventLog()
	profiles := store.NewMemoryProfiles()
	kv := store.NewMemoryKV()
	metrics := testMetrics()

	cfg := &config.RecoConfig{
		EngagedWeight:  0.6,
		TopK:           10,
		FallbackLimit:  5,
		DefaultLimit:   5,
		UserCacheTTL:   24 * time.Hour,
		MatrixTTL:      time.Hour,
		StoreTimeout:   time.Second,
		RebuildTimeout: 5 * time.Second,
	}

	matrix := NewItemMatrixService(catalog, events, kv, cfg, logger, metrics)
	signals := NewUserSignalService(events, profiles, logger)
	reco := NewRecommendationService(matrix, signals, catalog, kv, cfg, logger, metrics)
	feedback := NewFeedbackService(events, kv, nil, logger, metrics)
	ingest := NewEventService(events, profiles, logger)

	return &testEnv{
		catalog:  catalog,
		events:   events,
		profiles: profiles,
		kv:       kv,
		cfg:      cfg,
		matrix:   matrix,
		signals:  signals,
		reco:     reco,
		feedback: feedback,
		ingest:   ingest,
	}
}

// shopCatalog is a five-product supplement catalog with enough lexical
// overlap to make ranking interesting.
func shopCatalog() []models.Item {
	return []models.Item{
		{
			ID:      "mag-b6",
			Title:   "Magnesium B6",
			Bullets: []string{"Supports restful sleep and calm nerves"},
			Annotations: map[string]string{
				"sleep":  "deep sleep support magnesium",
				"stress": "calm under stress",
			},
		},
		{
			ID:      "melatonin",
			Title:   "Melatonin Forte",
			Bullets: []string{"Helps you fall asleep faster"},
			Annotations: map[string]string{
				"sleep": "sleep onset regulation",
			},
		},
		{
			ID:      "omega-3",
			Title:   "Omega-3 Premium",
			Bullets: []string{"Heart and brain support"},
		},
		{
			ID:      "vit-d3",
			Title:   "Vitamin D3 2000",
			Bullets: []string{"Immunity and strong bones"},
		},
		{
			ID:      "collagen",
			Title:   "Marine Collagen",
			Bullets: []string{"Skin elasticity and joint comfort"},
		},
	}
}

func (env *testEnv) appendEvent(userID, kind string, payload interface{}) models.Event {
	event := models.Event{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Payload:   models.MustPayload(payload),
		CreatedAt: time.Now(),
	}
	// MemoryEventLog.Append never fails
	_ = env.events.Append(context.Background(), event)
	return event
}
