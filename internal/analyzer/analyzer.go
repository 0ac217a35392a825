// Package analyzer computes evaluation metrics over a user's persisted
// portfolio: value, return and risk aggregates, sector coverage, and
// threshold-derived labels.
package analyzer

import (
	"fmt"
	"math"

	"github.com/youthfin/yofin/internal/models"
)

// sectorWeight converts distinct product-type coverage into a 0-100 score.
const sectorWeight = 20

// Analyzer evaluates persisted portfolios against the product catalog.
type Analyzer struct{}

// New creates a portfolio analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze aggregates the allocation items into a portfolio analysis. Items
// whose product code is absent from products are skipped from return and
// risk aggregation but still count toward total value.
func (a *Analyzer) Analyze(userID string, items []models.AllocationItem, products map[string]models.Product) (*models.PortfolioAnalysis, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrEmptyPortfolio)
	}

	totalValue := 0.0
	totalReturn := 0.0
	riskScore := 0.0
	sectorAllocation := make(map[string]float64)

	for _, item := range items {
		totalValue += item.InvestmentAmount

		product, ok := products[item.ProductCode]
		if !ok {
			continue
		}

		totalReturn += product.InterestRate / 100 * item.InvestmentAmount
		riskScore += float64(product.RiskLevel) * item.AllocationPercentage / 100
		sectorAllocation[string(product.ProductType)] += item.AllocationPercentage
	}

	diversification := math.Min(100, float64(len(sectorAllocation)*sectorWeight))

	analysis := &models.PortfolioAnalysis{
		UserID:               userID,
		TotalValue:           totalValue,
		TotalReturn:          totalReturn,
		RiskScore:            riskScore,
		DiversificationScore: diversification,
		SectorAllocation:     sectorAllocation,
		OverallRiskLabel:     models.DeriveRiskLabel(riskScore),
		DiversificationLabel: models.DeriveDiversityLabel(diversification),
	}
	analysis.Recommendations = buildRecommendations(analysis)

	return analysis, nil
}

// buildRecommendations returns one advice string per label, chosen by the
// same thresholds that produced the labels.
func buildRecommendations(analysis *models.PortfolioAnalysis) []string {
	recommendations := make([]string, 0, 2)

	switch analysis.OverallRiskLabel {
	case models.RiskLabelLow:
		recommendations = append(recommendations, "Overall risk is low. A small allocation to growth products could raise expected returns if your horizon allows.")
	case models.RiskLabelMedium:
		recommendations = append(recommendations, "Risk level is moderate and broadly appropriate for a balanced portfolio.")
	default:
		recommendations = append(recommendations, "Overall risk is high. Consider shifting part of the allocation into principal-protected deposits or savings.")
	}

	if analysis.DiversificationLabel == models.DiversityGood {
		recommendations = append(recommendations, "Diversification across product types is on track.")
	} else {
		recommendations = append(recommendations, "Holdings are concentrated in few product types. Adding other categories would improve diversification.")
	}

	return recommendations
}
