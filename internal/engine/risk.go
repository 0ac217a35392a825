package engine

import "github.com/youthfin/yofin/internal/models"

// neutralRisk is the score reported on every axis when there is nothing to
// analyze.
const neutralRisk = 5.0

// AnalyzeRisk builds a risk report from allocation items. The deterministic
// path replicates the mean product risk across all four axes; per-axis
// differentiation would need market data this service does not ingest.
func AnalyzeRisk(items []models.AllocationItem) models.RiskReport {
	if len(items) == 0 {
		return models.RiskReport{
			OverallRisk:       neutralRisk,
			CreditRisk:        neutralRisk,
			MarketRisk:        neutralRisk,
			LiquidityRisk:     neutralRisk,
			ConcentrationRisk: neutralRisk,
			RiskFactors:       []string{"portfolio is empty"},
			Mitigations:       []string{"add holdings before relying on this report"},
		}
	}

	sum := 0.0
	for _, item := range items {
		sum += float64(item.RiskLevel)
	}
	overall := sum / float64(len(items))

	return models.RiskReport{
		OverallRisk:       overall,
		CreditRisk:        overall,
		MarketRisk:        overall,
		LiquidityRisk:     overall,
		ConcentrationRisk: overall,
		RiskFactors: []string{
			"interest rate changes can reduce realized returns",
			"fund products carry market price risk",
			"early termination of term products forfeits interest",
		},
		Mitigations: []string{
			"keep an emergency reserve outside term products",
			"review the allocation when income or goals change",
			"spread maturities to reduce reinvestment risk",
		},
	}
}
