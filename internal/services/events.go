package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

// EventService is the write side of the engagement log for outside producers:
// the quiz, menu and lead flows append through it, and plan generation stores
// the profile alongside its event.
type EventService struct {
	events   store.EventStore
	profiles store.ProfileStore
	logger   *logrus.Logger
	now      func() time.Time
}

func NewEventService(events store.EventStore, profiles store.ProfileStore, logger *logrus.Logger) *EventService {
	return &EventService{
		events:   events,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest appends one event. Kinds this version does not know are stored
// anyway; readers skip them.
func (s *EventService) Ingest(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	payload := req.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}

	event := models.Event{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Kind:      req.Kind,
		Payload:   payload,
		CreatedAt: s.now(),
	}

	if err := s.events.Append(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"user_id":  event.UserID,
		"kind":     event.Kind,
	}).Debug("Event ingested")

	return &event, nil
}

// SetPlan stores the user's latest generated plan and appends the matching
// event so the history stays complete.
func (s *EventService) SetPlan(ctx context.Context, userID string, req models.PlanRequest) error {
	plan := models.Plan{
		Context: req.Context,
		Level:   req.Level,
		Items:   req.Items,
	}

	if err := s.profiles.SetLastPlan(ctx, userID, plan); err != nil {
		return fmt.Errorf("failed to store plan: %w", err)
	}

	event := models.Event{
		ID:     uuid.New(),
		UserID: userID,
		Kind:   models.EventPlanGenerated,
		Payload: models.MustPayload(models.PlanGeneratedPayload{
			Context: plan.Context,
			Level:   plan.Level,
			Items:   plan.Items,
		}),
		CreatedAt: s.now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append plan event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"context": plan.Context,
		"items":   len(plan.Items),
	}).Info("Stored user plan")

	return nil
}
