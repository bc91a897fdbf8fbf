package models

// Item is one entry in the product catalog. The catalog is read-only to this
// service and immutable within a scoring cycle; items only change when the
// catalog itself is reloaded.
type Item struct {
	ID          string            `json:"id" db:"id" validate:"required"`
	Title       string            `json:"title" db:"title" validate:"required"`
	Bullets     []string          `json:"bullets,omitempty" db:"bullets"`
	Annotations map[string]string `json:"annotations,omitempty" db:"annotations"`
	Category    string            `json:"category,omitempty" db:"category"`
	Tags        []string          `json:"tags,omitempty" db:"tags"`
	ImageURL    *string           `json:"image_url,omitempty" db:"image_url"`
	PurchaseURL *string           `json:"purchase_url,omitempty" db:"purchase_url"`
	Position    int               `json:"-" db:"position"`
}

// Plan is the most recent product plan generated for a user by the guided
// flows. Its labels feed the user's text signal and its items count as
// already engaged.
type Plan struct {
	Context string   `json:"context,omitempty"`
	Level   string   `json:"level,omitempty"`
	Items   []string `json:"items,omitempty"`
}
