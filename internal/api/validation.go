package api

import (
	"fmt"

	"github.com/youthfin/yofin/internal/models"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateProduct validates a product payload for create and update
func ValidateProduct(product *models.Product) error {
	if product.ProductCode == "" {
		return ValidationError{Field: "product_code", Message: "Product code is required"}
	}

	if product.ProductName == "" {
		return ValidationError{Field: "product_name", Message: "Product name is required"}
	}

	if product.RiskLevel < models.MinRiskLevel || product.RiskLevel > models.MaxRiskLevel {
		return ValidationError{Field: "risk_level", Message: fmt.Sprintf("Risk level must be between %d and %d", models.MinRiskLevel, models.MaxRiskLevel)}
	}

	if product.InterestRate < 0 {
		return ValidationError{Field: "interest_rate", Message: "Interest rate cannot be negative"}
	}

	if product.MinAmount < 0 {
		return ValidationError{Field: "min_amount", Message: "Min amount cannot be negative"}
	}

	if product.MaxAmount > 0 && product.MaxAmount < product.MinAmount {
		return ValidationError{Field: "max_amount", Message: "Max amount cannot be below min amount"}
	}

	if product.TermMonths < 0 {
		return ValidationError{Field: "term_months", Message: "Term months cannot be negative"}
	}

	return nil
}

// ValidatePolicy validates a policy payload for create and update
func ValidatePolicy(policy *models.Policy) error {
	if policy.PolicyCode == "" {
		return ValidationError{Field: "policy_code", Message: "Policy code is required"}
	}

	if policy.PolicyName == "" {
		return ValidationError{Field: "policy_name", Message: "Policy name is required"}
	}

	if policy.TargetAgeMin < 0 {
		return ValidationError{Field: "target_age_min", Message: "Target age cannot be negative"}
	}

	if policy.TargetAgeMax < policy.TargetAgeMin {
		return ValidationError{Field: "target_age_max", Message: "Target age max cannot be below min"}
	}

	if policy.BenefitAmount < 0 {
		return ValidationError{Field: "benefit_amount", Message: "Benefit amount cannot be negative"}
	}

	return nil
}

// ValidateRecommendRequest validates the recommendation request body
func ValidateRecommendRequest(req *RecommendRequest) error {
	if req.UserID == "" && req.Profile == nil {
		return ValidationError{Field: "user_id", Message: "User ID is required"}
	}

	if req.Profile != nil {
		if req.Profile.TotalAssets < 0 {
			return ValidationError{Field: "profile.total_assets", Message: "Total assets cannot be negative"}
		}
		if req.Profile.Age < 0 {
			return ValidationError{Field: "profile.age", Message: "Age cannot be negative"}
		}
		if req.Profile.RiskTolerance < 0 || req.Profile.RiskTolerance > 10 {
			return ValidationError{Field: "profile.risk_tolerance", Message: "Risk tolerance must be between 0 and 10"}
		}
	}

	return nil
}

// ValidateAllocationItems validates directly submitted portfolio items
func ValidateAllocationItems(items []models.AllocationItem) error {
	if len(items) == 0 {
		return ValidationError{Field: "items", Message: "At least one item is required"}
	}

	for i, item := range items {
		if item.ProductCode == "" {
			return ValidationError{Field: fmt.Sprintf("items[%d].product_code", i), Message: "Product code is required"}
		}
		if item.AllocationPercentage < 0 || item.AllocationPercentage > 100 {
			return ValidationError{Field: fmt.Sprintf("items[%d].allocation_percentage", i), Message: "Allocation percentage must be between 0 and 100"}
		}
		if item.InvestmentAmount < 0 {
			return ValidationError{Field: fmt.Sprintf("items[%d].investment_amount", i), Message: "Investment amount cannot be negative"}
		}
	}

	return nil
}
