package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/messaging"
	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

const ctrMetricsKey = "metrics:recommend_ctr"

// FeedbackService closes the loop between served recommendations and the
// event log: impressions and clicks bump the CTR counters, land in the log as
// events, and fan out to the feedback topic. A click also invalidates the
// user's cached recommendations so the next read reflects it.
type FeedbackService struct {
	events    store.EventStore
	kv        store.KV
	publisher *messaging.FeedbackPublisher
	logger    *logrus.Logger
	metrics   *Metrics
	now       func() time.Time
}

func NewFeedbackService(
	events store.EventStore,
	kv store.KV,
	publisher *messaging.FeedbackPublisher,
	logger *logrus.Logger,
	metrics *Metrics,
) *FeedbackService {
	return &FeedbackService{
		events:    events,
		kv:        kv,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// MarkShown records that itemIDs were displayed to the user. The event is
// the record of truth; counters only move once it landed, so a failed append
// never skews CTR.
func (s *FeedbackService) MarkShown(ctx context.Context, userID string, itemIDs []string) error {
	event := models.Event{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      models.EventRecoShown,
		Payload:   models.MustPayload(models.RecoShownPayload{Items: itemIDs}),
		CreatedAt: s.now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append shown event: %w", err)
	}

	if _, err := s.kv.HIncrBy(ctx, ctrMetricsKey, "shows", int64(len(itemIDs))); err != nil {
		s.logger.WithError(err).Warn("Failed to bump shows counter")
	}

	s.metrics.FeedbackEvents.WithLabelValues("shown").Inc()
	s.publish(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(itemIDs),
	}).Debug("Recorded shown recommendations")

	return nil
}

// MarkClicked records a click on itemID and drops the user's cached
// recommendation entry. Safe to call repeatedly for the same click.
func (s *FeedbackService) MarkClicked(ctx context.Context, userID, itemID string) error {
	event := models.Event{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      models.EventRecoClicked,
		Payload:   models.MustPayload(models.RecoClickedPayload{Item: itemID}),
		CreatedAt: s.now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to append click event: %w", err)
	}

	if _, err := s.kv.HIncrBy(ctx, ctrMetricsKey, "clicks", 1); err != nil {
		s.logger.WithError(err).Warn("Failed to bump clicks counter")
	}

	if err := s.kv.Delete(ctx, userCacheKey(userID)); err != nil {
		return fmt.Errorf("failed to invalidate recommendation cache: %w", err)
	}

	s.metrics.FeedbackEvents.WithLabelValues("click").Inc()
	s.publish(ctx, event)

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": itemID,
	}).Debug("Recorded recommendation click")

	return nil
}

// Metrics reads the engagement counters. CTR is zero until something was
// shown.
func (s *FeedbackService) Metrics(ctx context.Context) (*models.EngagementMetrics, error) {
	values, err := s.kv.HGetAll(ctx, ctrMetricsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read engagement counters: %w", err)
	}

	metrics := &models.EngagementMetrics{}
	metrics.Shows, _ = strconv.ParseInt(values["shows"], 10, 64)
	metrics.Clicks, _ = strconv.ParseInt(values["clicks"], 10, 64)
	if metrics.Shows > 0 {
		metrics.CTR = float64(metrics.Clicks) / float64(metrics.Shows)
	}

	return metrics, nil
}

func (s *FeedbackService) publish(ctx context.Context, event models.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish feedback event")
	}
}
