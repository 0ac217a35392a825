package api

import (
	"strings"
	"testing"

	"github.com/youthfin/yofin/internal/models"
)

func TestValidateProduct(t *testing.T) {
	valid := models.Product{
		ProductCode: "BANK001",
		ProductName: "Fixed-Term Deposit",
		RiskLevel:   1,
	}

	tests := []struct {
		name      string
		mutate    func(p *models.Product)
		wantField string
	}{
		{"valid", func(p *models.Product) {}, ""},
		{"missing code", func(p *models.Product) { p.ProductCode = "" }, "product_code"},
		{"missing name", func(p *models.Product) { p.ProductName = "" }, "product_name"},
		{"risk too low", func(p *models.Product) { p.RiskLevel = 0 }, "risk_level"},
		{"risk too high", func(p *models.Product) { p.RiskLevel = 6 }, "risk_level"},
		{"negative rate", func(p *models.Product) { p.InterestRate = -0.5 }, "interest_rate"},
		{"negative min amount", func(p *models.Product) { p.MinAmount = -1 }, "min_amount"},
		{"max below min", func(p *models.Product) { p.MinAmount = 100; p.MaxAmount = 50 }, "max_amount"},
		{"open max ok", func(p *models.Product) { p.MinAmount = 100; p.MaxAmount = 0 }, ""},
		{"negative term", func(p *models.Product) { p.TermMonths = -1 }, "term_months"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidateProduct(&p)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.wantField+":") {
				t.Errorf("error = %q, want field %s", err, tt.wantField)
			}
		})
	}
}

func TestValidatePolicy(t *testing.T) {
	valid := models.Policy{
		PolicyCode:    "YOUTH001",
		PolicyName:    "Youth Savings Subsidy",
		TargetAgeMin:  19,
		TargetAgeMax:  34,
		BenefitAmount: 5_000_000,
	}

	tests := []struct {
		name      string
		mutate    func(p *models.Policy)
		wantField string
	}{
		{"valid", func(p *models.Policy) {}, ""},
		{"no age bound", func(p *models.Policy) { p.TargetAgeMin = 0; p.TargetAgeMax = 0 }, ""},
		{"missing code", func(p *models.Policy) { p.PolicyCode = "" }, "policy_code"},
		{"missing name", func(p *models.Policy) { p.PolicyName = "" }, "policy_name"},
		{"negative min age", func(p *models.Policy) { p.TargetAgeMin = -1 }, "target_age_min"},
		{"max below min", func(p *models.Policy) { p.TargetAgeMax = 10 }, "target_age_max"},
		{"negative benefit", func(p *models.Policy) { p.BenefitAmount = -1 }, "benefit_amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := ValidatePolicy(&p)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.wantField+":") {
				t.Errorf("error = %q, want field %s", err, tt.wantField)
			}
		})
	}
}

func TestValidateRecommendRequest(t *testing.T) {
	if err := ValidateRecommendRequest(&RecommendRequest{UserID: "user1"}); err != nil {
		t.Errorf("user id only: %v", err)
	}
	if err := ValidateRecommendRequest(&RecommendRequest{Profile: &models.UserProfile{Age: 25}}); err != nil {
		t.Errorf("inline profile only: %v", err)
	}
	if err := ValidateRecommendRequest(&RecommendRequest{}); err == nil {
		t.Error("expected error for empty request")
	}
	if err := ValidateRecommendRequest(&RecommendRequest{Profile: &models.UserProfile{TotalAssets: -1}}); err == nil {
		t.Error("expected error for negative assets")
	}
	if err := ValidateRecommendRequest(&RecommendRequest{Profile: &models.UserProfile{RiskTolerance: 11}}); err == nil {
		t.Error("expected error for out-of-range risk tolerance")
	}
}

func TestValidateAllocationItems(t *testing.T) {
	valid := []models.AllocationItem{
		{ProductCode: "BANK001", AllocationPercentage: 60, InvestmentAmount: 600},
		{ProductCode: "BANK002", AllocationPercentage: 40, InvestmentAmount: 400},
	}
	if err := ValidateAllocationItems(valid); err != nil {
		t.Errorf("valid items: %v", err)
	}

	if err := ValidateAllocationItems(nil); err == nil {
		t.Error("expected error for empty items")
	}
	if err := ValidateAllocationItems([]models.AllocationItem{{AllocationPercentage: 50}}); err == nil {
		t.Error("expected error for missing product code")
	}
	if err := ValidateAllocationItems([]models.AllocationItem{{ProductCode: "BANK001", AllocationPercentage: 120}}); err == nil {
		t.Error("expected error for percentage over 100")
	}
}
