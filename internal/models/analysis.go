package models

// PortfolioAnalysis is a derived, read-only view over a user's persisted
// allocation items.
type PortfolioAnalysis struct {
	UserID               string             `json:"user_id"`
	TotalValue           float64            `json:"total_value"`
	TotalReturn          float64            `json:"total_return"`
	RiskScore            float64            `json:"risk_score"`
	DiversificationScore float64            `json:"diversification_score"` // 0-100
	SectorAllocation     map[string]float64 `json:"sector_allocation"`
	OverallRiskLabel     RiskLabel          `json:"overall_risk"`
	DiversificationLabel DiversityLabel     `json:"diversification"`
	Recommendations      []string           `json:"recommendations"`
}

// RiskLabel is the qualitative banding of a portfolio risk score.
type RiskLabel string

const (
	RiskLabelLow    RiskLabel = "low"    // risk_score < 2
	RiskLabelMedium RiskLabel = "medium" // risk_score < 4
	RiskLabelHigh   RiskLabel = "high"
)

// DiversityLabel is the qualitative banding of a diversification score.
type DiversityLabel string

const (
	DiversityGood             DiversityLabel = "good" // score > 60
	DiversityNeedsImprovement DiversityLabel = "needs improvement"
)

// DeriveRiskLabel maps a numeric risk score onto its qualitative band.
func DeriveRiskLabel(score float64) RiskLabel {
	switch {
	case score < 2:
		return RiskLabelLow
	case score < 4:
		return RiskLabelMedium
	default:
		return RiskLabelHigh
	}
}

// DeriveDiversityLabel maps a diversification score onto its band.
func DeriveDiversityLabel(score float64) DiversityLabel {
	if score > 60 {
		return DiversityGood
	}
	return DiversityNeedsImprovement
}
