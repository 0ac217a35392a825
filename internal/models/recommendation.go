package models

import (
	"math"
	"time"
)

// AllocationItem is one line of a portfolio allocation. RiskLevel is copied
// from the product at allocation time (a snapshot, not a live join).
type AllocationItem struct {
	ID                   string    `json:"id,omitempty"`
	UserID               string    `json:"user_id,omitempty"`
	ProductCode          string    `json:"product_code"`
	ProductName          string    `json:"product_name"`
	AllocationPercentage float64   `json:"allocation_percentage"` // 0-100
	InvestmentAmount     float64   `json:"investment_amount"`
	ExpectedReturn       float64   `json:"expected_return"` // nominal rate, percent
	RiskLevel            int       `json:"risk_level"`
	RecommendationID     string    `json:"recommendation_id,omitempty"`
	CreatedAt            time.Time `json:"created_at,omitempty"`
}

// Recommendation is the engine's output: a complete, immutable allocation of
// the user's investable assets. Item order is presentation order only.
type Recommendation struct {
	ID                    string           `json:"id"`
	UserID                string           `json:"user_id"`
	TotalInvestmentAmount float64          `json:"total_investment_amount"`
	Items                 []AllocationItem `json:"portfolio_items"`
	ExpectedTotalReturn   float64          `json:"expected_total_return"`
	TotalRiskScore        float64          `json:"total_risk_score"`
	Reason                string           `json:"recommendation_reason"`
	ConfidenceScore       float64          `json:"confidence_score"` // 0-1
	YouthPolicyBenefits   []string         `json:"youth_policy_benefits"`
	Strategy              Strategy         `json:"strategy"`
	ModelName             string           `json:"model_name,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

// Strategy identifies which generation path produced a recommendation.
type Strategy string

const (
	StrategyAI       Strategy = "ai"
	StrategyFallback Strategy = "fallback"
)

// AllocationTolerance bounds the acceptable deviation of the percentage sum
// from 100 for a structurally valid recommendation.
const AllocationTolerance = 0.01

// FallbackConfidence is the fixed calibration constant reported by the
// deterministic strategy. It is the only observable difference between the
// two generation paths.
const FallbackConfidence = 0.85

// Validate checks the structural invariants: percentages sum to 100 within
// tolerance and each amount equals total x pct/100 within rounding slack.
func (r *Recommendation) Validate() bool {
	if len(r.Items) == 0 {
		return false
	}
	var sum float64
	for _, item := range r.Items {
		sum += item.AllocationPercentage
	}
	if math.Abs(sum-100) > AllocationTolerance {
		return false
	}
	for _, item := range r.Items {
		want := r.TotalInvestmentAmount * item.AllocationPercentage / 100
		if math.Abs(item.InvestmentAmount-want) > 1.0 {
			return false
		}
	}
	return true
}

// RiskReport is the output of the engine's risk analysis sub-operation. The
// deterministic path replicates the overall score into all four axes; only
// the AI path may differentiate them.
type RiskReport struct {
	OverallRisk       float64  `json:"overall_risk"`
	CreditRisk        float64  `json:"credit_risk"`
	MarketRisk        float64  `json:"market_risk"`
	LiquidityRisk     float64  `json:"liquidity_risk"`
	ConcentrationRisk float64  `json:"concentration_risk"`
	RiskFactors       []string `json:"risk_factors"`
	Mitigations       []string `json:"mitigations"`
}
