package analysis

import (
	"encoding/json"
	"time"
)

// ModelTier identifies which inference pass produced the accepted finding.
type ModelTier string

const (
	// TierScout is the cheap screening pass, always run first.
	TierScout ModelTier = "scout"
	// TierSniper is the expensive pass, run only when the scout reports
	// low confidence.
	TierSniper ModelTier = "sniper"
)

// Finding is a validated structured result from one inference pass.
// Raw holds the model JSON with markdown fencing already stripped;
// Confidence is the extracted confidence_score (guaranteed integer 0-100).
type Finding struct {
	Raw        json.RawMessage `json:"raw"`
	Confidence int             `json:"confidence"`
}

// RecordID identifier type
type RecordID string

// Record is one completed analysis stored for auditing and retrieval.
// Records are insert-only; retention is an operational concern.
type Record struct {
	ID        RecordID  `json:"id"`
	ImageURL  string    `json:"image_url"`
	Variant   string    `json:"variant"`
	Result    string    `json:"analysis_data"` // JSON string from the model
	ModelUsed string    `json:"model_used"`
	CreatedAt time.Time `json:"created_at"`
}
