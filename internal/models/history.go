package models

import (
	"encoding/json"
	"time"
)

// RecommendationHistory is the persisted audit record of one recommendation
// request. Payload holds the full serialized Recommendation.
type RecommendationHistory struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Payload    json.RawMessage `json:"payload"`
	Strategy   string          `json:"strategy"`
	ModelName  string          `json:"model_name,omitempty"`
	Confidence float64         `json:"confidence"`
	CreatedAt  time.Time       `json:"created_at"`
}
