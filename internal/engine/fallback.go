package engine

import (
	"fmt"

	"github.com/youthfin/yofin/internal/models"
)

// allocationWeights maps a portfolio size to its allocation schedule. The
// two-product schedule renormalizes the 40/30 split to two decimal places
// with the rounding residual on the first item.
var allocationWeights = map[int][]float64{
	1: {100},
	2: {57.14, 42.86},
	3: {40, 30, 30},
	4: {40, 30, 20, 10},
	5: {35, 25, 20, 12, 8},
}

// maxPortfolioItems caps how many products a recommendation may hold.
const maxPortfolioItems = 5

// FallbackStrategy produces a deterministic recommendation without any
// model call. Given at least one product it always succeeds.
type FallbackStrategy struct{}

// NewFallbackStrategy creates the deterministic strategy.
func NewFallbackStrategy() *FallbackStrategy {
	return &FallbackStrategy{}
}

// Generate allocates the profile's total assets over the first products in
// source order using the fixed weight schedule.
func (s *FallbackStrategy) Generate(profile models.UserProfile, products []models.Product, policies []models.Policy) *models.Recommendation {
	count := len(products)
	if count > maxPortfolioItems {
		count = maxPortfolioItems
	}
	weights := allocationWeights[count]

	items := make([]models.AllocationItem, 0, count)
	expectedTotalReturn := 0.0
	totalRiskScore := 0.0

	for i := 0; i < count; i++ {
		product := products[i]
		pct := weights[i]

		items = append(items, models.AllocationItem{
			UserID:               profile.UserID,
			ProductCode:          product.ProductCode,
			ProductName:          product.ProductName,
			AllocationPercentage: pct,
			InvestmentAmount:     profile.TotalAssets * pct / 100,
			ExpectedReturn:       product.InterestRate,
			RiskLevel:            product.RiskLevel,
		})

		expectedTotalReturn += product.InterestRate * pct / 100
		totalRiskScore += float64(product.RiskLevel) * pct / 100
	}

	return &models.Recommendation{
		UserID:                profile.UserID,
		TotalInvestmentAmount: profile.TotalAssets,
		Items:                 items,
		ExpectedTotalReturn:   expectedTotalReturn,
		TotalRiskScore:        totalRiskScore,
		Reason:                buildReason(profile, count),
		ConfidenceScore:       models.FallbackConfidence,
		YouthPolicyBenefits:   eligiblePolicyNames(profile, policies),
		Strategy:              models.StrategyFallback,
	}
}

// buildReason templates a short rationale keyed on risk tolerance.
func buildReason(profile models.UserProfile, count int) string {
	switch {
	case profile.IsConservative():
		return fmt.Sprintf("A stability-focused allocation across %d products, weighted toward principal-protected deposits and savings to match your low risk tolerance.", count)
	case profile.IsAggressive():
		return fmt.Sprintf("A growth-focused allocation across %d products, giving higher-yield funds meaningful weight to match your high risk tolerance.", count)
	default:
		return fmt.Sprintf("A balanced allocation across %d products, mixing stable savings with moderate fund exposure to match your risk tolerance.", count)
	}
}

// eligiblePolicyNames returns up to two age-eligible policy names in source
// order. Informational only; policies never receive an allocation.
func eligiblePolicyNames(profile models.UserProfile, policies []models.Policy) []string {
	names := make([]string, 0, 2)
	for _, p := range policies {
		if !p.MatchesAge(profile.Age) {
			continue
		}
		names = append(names, p.PolicyName)
		if len(names) == 2 {
			break
		}
	}
	return names
}
