package models

import "time"

// InferenceLog represents a single LLM API call made by the recommendation
// engine or the preprocessing pipeline.
type InferenceLog struct {
	ID           string    `json:"id"`
	Provider     string    `json:"provider"`      // 'openai', 'anthropic', 'gemini'
	Model        string    `json:"model"`         // 'gpt-4o-mini', 'claude-sonnet-4-5', ...
	Operation    string    `json:"operation"`     // 'recommendation', 'risk_analysis', 'preprocess'
	TokensUsed   int       `json:"tokens_used"`   // Total tokens
	InputTokens  *int      `json:"input_tokens"`  // Input tokens if available
	OutputTokens *int      `json:"output_tokens"` // Output tokens if available
	LatencyMs    *int      `json:"latency_ms"`    // Response time in milliseconds
	Status       string    `json:"status"`        // 'success', 'error'
	ErrorMessage *string   `json:"error_message"` // Error details if failed
	Metadata     string    `json:"metadata"`      // JSONB metadata
	CreatedAt    time.Time `json:"created_at"`
}

// InferenceLogFilter narrows an audit trail listing. Zero-valued fields
// match everything; a non-positive limit applies the repository default.
type InferenceLogFilter struct {
	Provider  string
	Operation string
	Status    string
	Limit     int
}

// InferenceLogStats represents aggregated call statistics.
type InferenceLogStats struct {
	TotalCalls      int     `json:"total_calls"`
	TotalTokens     int64   `json:"total_tokens"`
	SuccessfulCalls int     `json:"successful_calls"`
	FailedCalls     int     `json:"failed_calls"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
}
