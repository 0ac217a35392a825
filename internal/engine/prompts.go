package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/youthfin/yofin/internal/models"
)

// PromptTemplates holds system and user prompt templates for portfolio
// recommendation.
type PromptTemplates struct {
	SystemPrompt           string
	RecommendationTemplate string
}

// NewPromptTemplates creates the default prompts for portfolio work.
func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{
		SystemPrompt:           buildSystemPrompt(),
		RecommendationTemplate: buildRecommendationTemplate(),
	}
}

func buildSystemPrompt() string {
	return `CRITICAL: You MUST output ONLY valid JSON. Do not include any text before or after the JSON object. Do not wrap it in markdown code blocks. Output the raw JSON object directly.

You are a financial advisor specializing in portfolio construction for young customers in Korea. You allocate a customer's investable assets across bank deposit, savings and fund products, taking youth-benefit policies into account.

Guidelines:
- Match product risk levels to the customer's risk tolerance (1-10 scale)
- Prefer principal-protected products for conservative customers
- Spread allocations across product types when the product list allows it
- Mention applicable youth policies; they are benefits, not portfolio items
- Use ONLY product codes that appear in the provided product list

Output Format: Your response MUST be ONLY this exact JSON structure with no additional text:
{
  "total_investment_amount": 10000000,
  "portfolio_items": [
    {
      "product_code": "BANK001",
      "product_name": "Product name from the list",
      "allocation_percentage": 40.0,
      "investment_amount": 4000000,
      "expected_return": 3.5,
      "risk_level": 1
    }
  ],
  "expected_total_return": 4.7,
  "total_risk_score": 1.9,
  "recommendation_reason": "One or two sentences explaining the allocation",
  "confidence_score": 0.9,
  "youth_policy_benefits": ["Policy name 1", "Policy name 2"]
}

HARD CONSTRAINTS:
- allocation_percentage values MUST sum to exactly 100
- Include at most 5 portfolio items
- investment_amount = total_investment_amount x allocation_percentage / 100
- expected_return and risk_level MUST be copied from the product list unchanged
- confidence_score is a number between 0.0 and 1.0`
}

func buildRecommendationTemplate() string {
	return `Build an investment portfolio for the following customer:

CUSTOMER PROFILE:
{{.Profile}}

AVAILABLE PRODUCTS:
{{.Products}}

ELIGIBLE YOUTH POLICIES:
{{.Policies}}

Allocate the customer's total assets across the available products following the structured format. Respect the customer's risk tolerance and keep the allocation practical for a young saver.`
}

// BuildRecommendationPrompt renders the user prompt from canonical records.
func (p *PromptTemplates) BuildRecommendationPrompt(profile models.UserProfile, products []models.Product, policies []models.Policy) string {
	template := p.RecommendationTemplate

	template = strings.ReplaceAll(template, "{{.Profile}}", formatProfile(profile))
	template = strings.ReplaceAll(template, "{{.Products}}", formatProducts(products))
	template = strings.ReplaceAll(template, "{{.Policies}}", formatPolicies(policies))

	return template
}

// formatProfile renders the profile fields the model needs for allocation.
func formatProfile(profile models.UserProfile) string {
	lines := []string{
		fmt.Sprintf("- Age: %d", profile.Age),
		fmt.Sprintf("- Total investable assets: %.0f KRW", profile.TotalAssets),
		fmt.Sprintf("- Risk tolerance: %d (1=lowest, 10=highest)", profile.RiskTolerance),
	}

	if profile.InvestmentPreference != "" {
		lines = append(lines, fmt.Sprintf("- Investment preference: %s", profile.InvestmentPreference))
	}
	if profile.InvestmentGoal != "" {
		lines = append(lines, fmt.Sprintf("- Investment goal: %s", profile.InvestmentGoal))
	}
	if profile.InvestmentHorizon != "" {
		lines = append(lines, fmt.Sprintf("- Investment horizon: %s", profile.InvestmentHorizon))
	}
	if len(profile.InterestAreas) > 0 {
		lines = append(lines, fmt.Sprintf("- Interest areas: %s", strings.Join(profile.InterestAreas, ", ")))
	}

	return strings.Join(lines, "\n")
}

func formatProducts(products []models.Product) string {
	if len(products) == 0 {
		return "(none)"
	}

	lines := make([]string, 0, len(products))
	for _, p := range products {
		line := fmt.Sprintf("- %s %s (%s, %s): rate %.2f%%, risk %d/%d",
			p.ProductCode, p.ProductName, p.ProductType, p.BankName,
			p.InterestRate, p.RiskLevel, models.MaxRiskLevel)
		if p.MinAmount > 0 {
			line += fmt.Sprintf(", min %.0f KRW", p.MinAmount)
		}
		if p.TermMonths > 0 {
			line += fmt.Sprintf(", term %d months", p.TermMonths)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func formatPolicies(policies []models.Policy) string {
	if len(policies) == 0 {
		return "(none)"
	}

	lines := make([]string, 0, len(policies))
	for _, p := range policies {
		lines = append(lines, fmt.Sprintf("- %s %s: ages %d-%d, benefit %.0f KRW",
			p.PolicyCode, p.PolicyName, p.TargetAgeMin, p.TargetAgeMax, p.BenefitAmount))
	}

	return strings.Join(lines, "\n")
}

// ExtractJSON pulls the JSON object out of model text output. Markdown code
// fences are tolerated even though the prompts forbid them.
func ExtractJSON(text string) string {
	// Try to find JSON in markdown code blocks (```json ... ```)
	re := regexp.MustCompile("(?s)```(?:json)?\\s*({.+})\\s*```")
	if matches := re.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	// Try to find raw JSON object - match from first { to last }
	re = regexp.MustCompile("(?s)^\\s*({.+})\\s*$")
	if matches := re.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

// ParseRecommendation converts model text output into a structured
// recommendation.
func ParseRecommendation(analysis string) (*models.Recommendation, error) {
	jsonStr := ExtractJSON(analysis)

	var rawData struct {
		TotalInvestmentAmount float64 `json:"total_investment_amount"`
		PortfolioItems        []struct {
			ProductCode          string  `json:"product_code"`
			ProductName          string  `json:"product_name"`
			AllocationPercentage float64 `json:"allocation_percentage"`
			InvestmentAmount     float64 `json:"investment_amount"`
			ExpectedReturn       float64 `json:"expected_return"`
			RiskLevel            int     `json:"risk_level"`
		} `json:"portfolio_items"`
		ExpectedTotalReturn  float64  `json:"expected_total_return"`
		TotalRiskScore       float64  `json:"total_risk_score"`
		RecommendationReason string   `json:"recommendation_reason"`
		ConfidenceScore      float64  `json:"confidence_score"`
		YouthPolicyBenefits  []string `json:"youth_policy_benefits"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &rawData); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w\nRaw response (first 500 chars): %.500s", err, analysis)
	}

	if len(rawData.PortfolioItems) == 0 {
		return nil, fmt.Errorf("model response contains no portfolio items")
	}
	if len(rawData.PortfolioItems) > 5 {
		return nil, fmt.Errorf("model response contains %d portfolio items, maximum is 5", len(rawData.PortfolioItems))
	}

	rec := &models.Recommendation{
		TotalInvestmentAmount: rawData.TotalInvestmentAmount,
		ExpectedTotalReturn:   rawData.ExpectedTotalReturn,
		TotalRiskScore:        rawData.TotalRiskScore,
		Reason:                rawData.RecommendationReason,
		ConfidenceScore:       rawData.ConfidenceScore,
		YouthPolicyBenefits:   rawData.YouthPolicyBenefits,
	}

	percentageSum := 0.0
	for _, item := range rawData.PortfolioItems {
		percentageSum += item.AllocationPercentage
		rec.Items = append(rec.Items, models.AllocationItem{
			ProductCode:          item.ProductCode,
			ProductName:          item.ProductName,
			AllocationPercentage: item.AllocationPercentage,
			InvestmentAmount:     item.InvestmentAmount,
			ExpectedReturn:       item.ExpectedReturn,
			RiskLevel:            item.RiskLevel,
		})
	}

	if diff := percentageSum - 100; diff > models.AllocationTolerance || diff < -models.AllocationTolerance {
		return nil, fmt.Errorf("allocation percentages sum to %.2f, want 100", percentageSum)
	}

	// Clamp confidence to [0, 1]
	if rec.ConfidenceScore < 0 {
		rec.ConfidenceScore = 0
	} else if rec.ConfidenceScore > 1 {
		rec.ConfidenceScore = 1
	}

	return rec, nil
}
