package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/config"
	"github.com/lumeva/reckon/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Interaction    *InteractionHandler
	Event          *EventHandler
	Metrics        *MetricsHandler
	Admin          *AdminHandler
}

func New(logger *logrus.Logger, cfg *config.Config, svc *services.Services) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, svc.Health),
		Recommendation: NewRecommendationHandler(logger, svc.Recommendation),
		Interaction:    NewInteractionHandler(logger, svc.Feedback),
		Event:          NewEventHandler(logger, svc.Events),
		Metrics:        NewMetricsHandler(logger, svc.Feedback),
		Admin:          NewAdminHandler(logger, cfg, svc.ItemMatrix),
	}
}
