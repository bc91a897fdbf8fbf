package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/store"
	"github.com/lumeva/reckon/pkg/models"
)

// UserSignal is everything known about a user that can drive ranking: free
// text fragments to vectorize and the set of items the user already engaged
// with.
type UserSignal struct {
	Texts   []string
	Engaged map[string]struct{}
}

// UserSignalService folds a user's stored plan and event history into a
// UserSignal.
type UserSignalService struct {
	events   store.EventStore
	profiles store.ProfileStore
	logger   *logrus.Logger
}

func NewUserSignalService(events store.EventStore, profiles store.ProfileStore, logger *logrus.Logger) *UserSignalService {
	return &UserSignalService{
		events:   events,
		profiles: profiles,
		logger:   logger,
	}
}

// Collect replays the user's history oldest-first. Undecodable payloads and
// unknown kinds are skipped, never an error; an empty signal just means the
// caller falls back to popularity.
func (s *UserSignalService) Collect(ctx context.Context, userID string) (*UserSignal, error) {
	signal := &UserSignal{Engaged: make(map[string]struct{})}

	plan, err := s.profiles.LastPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load last plan: %w", err)
	}
	if plan != nil {
		if plan.Context != "" {
			signal.Texts = append(signal.Texts, plan.Context)
		}
		if plan.Level != "" {
			signal.Texts = append(signal.Texts, plan.Level)
		}
		for _, id := range plan.Items {
			signal.Engaged[id] = struct{}{}
		}
	}

	events, err := s.events.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user events: %w", err)
	}

	for i := range events {
		payload, err := events[i].DecodePayload()
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"event_id": events[i].ID,
				"kind":     events[i].Kind,
			}).Debug("Skipping undecodable event")
			continue
		}

		switch p := payload.(type) {
		case models.QuizCompletedPayload:
			signal.Texts = append(signal.Texts, quizFragment(p))
			for _, id := range p.Items {
				signal.Engaged[id] = struct{}{}
			}
		case models.RecoClickedPayload:
			if p.Item != "" {
				signal.Engaged[p.Item] = struct{}{}
			}
		case models.RecoShownPayload:
			// impressions are text-only: they tell us what the user saw,
			// not what they wanted
			for _, id := range p.Items {
				signal.Texts = append(signal.Texts, "recommended "+id)
			}
		case models.MenuVisitedPayload:
			if p.Section != "" {
				signal.Texts = append(signal.Texts, "menu "+p.Section)
			}
		case models.LeadCompletedPayload:
			for _, id := range p.Items {
				signal.Engaged[id] = struct{}{}
			}
		case models.PlanGeneratedPayload:
			// plan content reaches the signal through the stored profile
		default:
			s.logger.WithField("kind", events[i].Kind).Debug("Ignoring unknown event kind")
		}
	}

	return signal, nil
}

// quizFragment renders a completed quiz as one text fragment, dropping empty
// parts. A zero score is treated as absent.
func quizFragment(p models.QuizCompletedPayload) string {
	parts := []string{"quiz"}
	if p.Quiz != "" {
		parts = append(parts, p.Quiz)
	}
	if p.Level != "" {
		parts = append(parts, p.Level)
	}
	if p.Score != 0 {
		parts = append(parts, strconv.Itoa(p.Score))
	}
	return strings.Join(parts, " ")
}
