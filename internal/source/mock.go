package source

import (
	"context"
	"fmt"
	"time"

	"github.com/youthfin/yofin/internal/models"
)

// MockGateway serves deterministic in-memory datasets with no network I/O.
// Records are already canonical, so they skip the normalizer entirely.
type MockGateway struct {
	products []models.Product
	policies []models.Policy
	users    map[string]models.UserProfile
}

// NewMockGateway creates a gateway backed by the built-in sample datasets.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		products: mockProducts(),
		policies: mockPolicies(),
		users:    mockUsers(),
	}
}

// Mode reports ModeMock.
func (g *MockGateway) Mode() Mode {
	return ModeMock
}

// FetchProducts returns the sample products matching the filter, in
// dataset order.
func (g *MockGateway) FetchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	out := make([]models.Product, 0, len(g.products))
	for _, p := range g.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FetchPolicies returns the sample policies matching the filter, in
// dataset order.
func (g *MockGateway) FetchPolicies(ctx context.Context, filter models.PolicyFilter) ([]models.Policy, error) {
	out := make([]models.Policy, 0, len(g.policies))
	for _, p := range g.policies {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// FetchUserProfile returns the sample profile for userID.
func (g *MockGateway) FetchUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, ok := g.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return &profile, nil
}

func mockProducts() []models.Product {
	now := time.Now()
	return []models.Product{
		{
			ProductCode:  "BANK001",
			ProductName:  "Fixed-Term Deposit",
			ProductType:  models.ProductTypeDeposit,
			BankName:     "KB Kookmin Bank",
			InterestRate: 3.5,
			MinAmount:    1_000_000,
			MaxAmount:    100_000_000,
			TermMonths:   12,
			RiskLevel:    1,
			Features:     []string{"principal protected", "fixed rate"},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ProductCode:  "BANK002",
			ProductName:  "Installment Savings",
			ProductType:  models.ProductTypeSavings,
			BankName:     "Shinhan Bank",
			InterestRate: 4.0,
			MinAmount:    100_000,
			MaxAmount:    30_000_000,
			TermMonths:   24,
			RiskLevel:    1,
			Features:     []string{"monthly installments", "principal protected"},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ProductCode:     "BANK003",
			ProductName:     "Youth Leap Account",
			ProductType:     models.ProductTypeSavings,
			BankName:        "KB Kookmin Bank",
			InterestRate:    5.0,
			MinAmount:       100_000,
			MaxAmount:       25_200_000,
			TermMonths:      60,
			RiskLevel:       2,
			Features:        []string{"government matched", "ages 19-34"},
			TargetCustomers: "youth",
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ProductCode:  "BANK004",
			ProductName:  "Equity Growth Fund",
			ProductType:  models.ProductTypeFund,
			BankName:     "Woori Bank",
			InterestRate: 7.0,
			MinAmount:    500_000,
			TermMonths:   0,
			RiskLevel:    4,
			Features:     []string{"equity exposure", "no term"},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ProductCode:  "BANK005",
			ProductName:  "Bond Income Fund",
			ProductType:  models.ProductTypeFund,
			BankName:     "Hana Bank",
			InterestRate: 4.5,
			MinAmount:    500_000,
			TermMonths:   0,
			RiskLevel:    2,
			Features:     []string{"bond exposure", "income oriented"},
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func mockPolicies() []models.Policy {
	now := time.Now()
	return []models.Policy{
		{
			PolicyCode:        "YOUTH001",
			PolicyName:        "Youth Leap Account Subsidy",
			TargetAgeMin:      19,
			TargetAgeMax:      34,
			BenefitAmount:     5_000_000,
			Requirements:      "Annual income below 75,000,000 and active employment",
			ApplicationPeriod: "2025-01-01 ~ 2025-12-31",
			PolicyType:        "asset formation",
			Description:       "Government-matched contributions for long-term youth savings accounts.",
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			PolicyCode:        "YOUTH002",
			PolicyName:        "Youth Housing Savings Bonus",
			TargetAgeMin:      20,
			TargetAgeMax:      39,
			BenefitAmount:     2_000_000,
			Requirements:      "First-time home buyer with a housing subscription account",
			ApplicationPeriod: "2025-03-01 ~ 2025-11-30",
			PolicyType:        "housing",
			Description:       "Bonus interest and tax relief on housing subscription savings.",
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		{
			PolicyCode:        "YOUTH003",
			PolicyName:        "Youth Jump-Start Allowance",
			TargetAgeMin:      18,
			TargetAgeMax:      29,
			BenefitAmount:     1_000_000,
			Requirements:      "Job seeker registered with an employment center",
			ApplicationPeriod: "2025-01-01 ~ 2025-06-30",
			PolicyType:        "employment",
			Description:       "One-time allowance supporting job-seeking youth.",
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}
}

func mockUsers() map[string]models.UserProfile {
	now := time.Now()
	return map[string]models.UserProfile{
		"user1": {
			UserID:               "user1",
			Name:                 "Kim Minjun",
			Age:                  25,
			IncomeLevel:          "middle",
			TotalAssets:          10_000_000,
			InvestmentPreference: models.PreferenceNeutral,
			InterestAreas:        []string{"savings", "funds"},
			RiskTolerance:        6,
			InvestmentGoal:       "seed money",
			InvestmentHorizon:    "3 years",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		"user2": {
			UserID:               "user2",
			Name:                 "Lee Seoyeon",
			Age:                  30,
			IncomeLevel:          "high",
			TotalAssets:          50_000_000,
			InvestmentPreference: models.PreferenceAggressive,
			InterestAreas:        []string{"funds", "stocks"},
			RiskTolerance:        8,
			InvestmentGoal:       "wealth growth",
			InvestmentHorizon:    "5 years",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
		"user3": {
			UserID:               "user3",
			Name:                 "Park Jihoon",
			Age:                  28,
			IncomeLevel:          "middle",
			TotalAssets:          20_000_000,
			InvestmentPreference: models.PreferenceConservative,
			InterestAreas:        []string{"deposits", "savings"},
			RiskTolerance:        3,
			InvestmentGoal:       "housing deposit",
			InvestmentHorizon:    "2 years",
			CreatedAt:            now,
			UpdatedAt:            now,
		},
	}
}
