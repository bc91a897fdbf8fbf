package models

import "encoding/json"

// Recommendation is one formatted entry served to clients: catalog display
// fields plus the relevance score, rounded to four decimals. Popularity
// fallback entries carry score 0.
type Recommendation struct {
	ItemID      string  `json:"item_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageURL    *string `json:"image_url,omitempty"`
	PurchaseURL *string `json:"purchase_url,omitempty"`
	Score       float64 `json:"score"`
}

type RecommendationResponse struct {
	UserID          string           `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	CacheHit        bool             `json:"cache_hit"`
}

type ShownRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,required"`
}

type ClickRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// EngagementMetrics reports the global show/click counters. CTR is clicks
// over shows, or 0 before anything was shown.
type EngagementMetrics struct {
	Shows  int64   `json:"shows"`
	Clicks int64   `json:"clicks"`
	CTR    float64 `json:"ctr"`
}

type EventRequest struct {
	UserID  string          `json:"user_id" validate:"required"`
	Kind    string          `json:"kind" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PlanRequest struct {
	Context string   `json:"context,omitempty"`
	Level   string   `json:"level,omitempty"`
	Items   []string `json:"items,omitempty" validate:"omitempty,dive,required"`
}
