package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/database"
	"github.com/lumeva/reckon/internal/messaging"
	"github.com/lumeva/reckon/internal/store"
)

type Services struct {
	Auth           *AuthService
	Health         *HealthService
	ItemMatrix     *ItemMatrixService
	Signals        *UserSignalService
	Recommendation *RecommendationService
	Feedback       *FeedbackService
	Events         *EventService

	publisher *messaging.FeedbackPublisher
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, stores *store.Stores) *Services {
	metrics := NewMetrics(prometheus.DefaultRegisterer)

	authService := NewAuthService(cfg, logger)
	healthService := NewHealthService(db, stores.KV, logger)

	publisher := messaging.NewFeedbackPublisher(cfg, logger)

	itemMatrixService := NewItemMatrixService(stores.Catalog, stores.Events, stores.KV, &cfg.Reco, logger, metrics)
	signalService := NewUserSignalService(stores.Events, stores.Profiles, logger)
	recommendationService := NewRecommendationService(
		itemMatrixService, signalService, stores.Catalog, stores.KV, &cfg.Reco, logger, metrics,
	)
	feedbackService := NewFeedbackService(stores.Events, stores.KV, publisher, logger, metrics)
	eventService := NewEventService(stores.Events, stores.Profiles, logger)

	return &Services{
		Auth:           authService,
		Health:         healthService,
		ItemMatrix:     itemMatrixService,
		Signals:        signalService,
		Recommendation: recommendationService,
		Feedback:       feedbackService,
		Events:         eventService,
		publisher:      publisher,
	}
}

// Stop flushes and closes the feedback publisher, if one is configured.
func (s *Services) Stop() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}
