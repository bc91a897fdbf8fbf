package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recognized event kinds. The quiz, lead and menu events are appended by
// producers outside this service through the events endpoint; shown and click
// events are appended by the feedback loop itself.
const (
	EventQuizCompleted = "quiz_completed"
	EventRecoClicked   = "reco_clicked"
	EventRecoShown     = "reco_shown"
	EventMenuVisited   = "menu_visited"
	EventLeadCompleted = "lead_completed"
	EventPlanGenerated = "plan_generated"
)

// Event is one entry in the append-only engagement log.
type Event struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id" validate:"required"`
	Kind      string          `json:"kind" db:"kind" validate:"required"`
	Payload   json.RawMessage `json:"payload,omitempty" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type QuizCompletedPayload struct {
	Quiz  string   `json:"quiz"`
	Level string   `json:"level,omitempty"`
	Score int      `json:"score,omitempty"`
	Items []string `json:"items,omitempty"`
}

type RecoClickedPayload struct {
	Item string `json:"item"`
}

type RecoShownPayload struct {
	Items []string `json:"items"`
}

type MenuVisitedPayload struct {
	Section string `json:"section"`
}

type LeadCompletedPayload struct {
	Items []string `json:"items"`
}

type PlanGeneratedPayload struct {
	Context string   `json:"context,omitempty"`
	Level   string   `json:"level,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// UnknownPayload stands in for kinds this version does not recognize. Callers
// skip it instead of failing, which keeps the service tolerant of newer
// producers.
type UnknownPayload struct {
	Kind string
}

// DecodePayload returns the typed payload for the event's kind. Unrecognized
// kinds decode to UnknownPayload; malformed JSON returns an error that
// callers are expected to log and skip.
func (e *Event) DecodePayload() (interface{}, error) {
	raw := e.Payload
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	switch e.Kind {
	case EventQuizCompleted:
		var p QuizCompletedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
		return p, nil
	case EventRecoClicked:
		var p RecoClickedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
		return p, nil
	case EventRecoShown:
		var p RecoShownPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
		return p, nil
	case EventMenuVisited:
		var p MenuVisitedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
		return p, nil
	case EventLeadCompleted:
		var p LeadCompletedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
		return p, nil
	case EventPlanGenerated:
		var p PlanGeneratedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", e.Kind, err)
		}
		return p, nil
	default:
		return UnknownPayload{Kind: e.Kind}, nil
	}
}

// MustPayload marshals a typed payload, panicking on failure. Only for
// payload structs defined in this package, which always marshal.
func MustPayload(p interface{}) json.RawMessage {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(fmt.Sprintf("marshal event payload: %v", err))
	}
	return raw
}
