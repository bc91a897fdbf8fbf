package services

import (
	"context"

	"github.com/lumeva/reckon/pkg/models"
)

// Interfaces consumed by the HTTP layer. Handlers depend on these instead of
// the concrete services so tests can substitute mocks.

// RecommendationServiceInterface serves ranked recommendation lists.
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, userID string, limit int) (*models.RecommendationResponse, error)
}

// FeedbackServiceInterface records impressions and clicks and reports the
// engagement counters.
type FeedbackServiceInterface interface {
	MarkShown(ctx context.Context, userID string, itemIDs []string) error
	MarkClicked(ctx context.Context, userID, itemID string) error
	Metrics(ctx context.Context) (*models.EngagementMetrics, error)
}

// EventServiceInterface is the ingest side of the engagement log.
type EventServiceInterface interface {
	Ingest(ctx context.Context, req models.EventRequest) (*models.Event, error)
	SetPlan(ctx context.Context, userID string, req models.PlanRequest) error
}

// ItemMatrixServiceInterface exposes the administrative rebuild trigger.
type ItemMatrixServiceInterface interface {
	Rebuild(ctx context.Context) (*ItemMatrix, error)
}
