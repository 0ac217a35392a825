package models

import "time"

// UserProfile is an immutable snapshot of a user taken per recommendation
// request. risk tolerance is on a 1-10 scale.
type UserProfile struct {
	UserID               string    `json:"user_id"`
	Name                 string    `json:"name"`
	Age                  int       `json:"age"`
	IncomeLevel          string    `json:"income_level"`
	TotalAssets          float64   `json:"total_assets"`
	InvestmentPreference string    `json:"investment_preference"`
	InterestAreas        []string  `json:"interest_areas"`
	RiskTolerance        int       `json:"risk_tolerance"`
	InvestmentGoal       string    `json:"investment_goal,omitempty"`
	InvestmentHorizon    string    `json:"investment_horizon,omitempty"`
	CreatedAt            time.Time `json:"created_at,omitempty"`
	UpdatedAt            time.Time `json:"updated_at,omitempty"`
}

// InvestmentPreference labels. Finer-grained labels from upstream sources are
// preserved as-is; these are the canonical coarse values.
const (
	PreferenceConservative = "conservative"
	PreferenceNeutral      = "neutral"
	PreferenceAggressive   = "aggressive"
)

// IsAggressive reports whether the profile leans toward growth allocations.
func (p *UserProfile) IsAggressive() bool {
	return p.RiskTolerance >= 7
}

// IsConservative reports whether the profile leans toward stability.
func (p *UserProfile) IsConservative() bool {
	return p.RiskTolerance <= 3
}
