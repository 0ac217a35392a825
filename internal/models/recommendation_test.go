package models

import (
	"testing"
)

func TestRecommendation_Validate(t *testing.T) {
	valid := Recommendation{
		TotalInvestmentAmount: 10_000_000,
		Items: []AllocationItem{
			{ProductCode: "BANK001", AllocationPercentage: 40, InvestmentAmount: 4_000_000},
			{ProductCode: "BANK002", AllocationPercentage: 30, InvestmentAmount: 3_000_000},
			{ProductCode: "BANK004", AllocationPercentage: 30, InvestmentAmount: 3_000_000},
		},
	}

	tests := []struct {
		name     string
		mutate   func(r *Recommendation)
		expected bool
	}{
		{
			name:     "valid allocation",
			mutate:   func(r *Recommendation) {},
			expected: true,
		},
		{
			name: "percentages under 100",
			mutate: func(r *Recommendation) {
				r.Items[0].AllocationPercentage = 35
			},
			expected: false,
		},
		{
			name: "percentages over 100",
			mutate: func(r *Recommendation) {
				r.Items[2].AllocationPercentage = 35.5
			},
			expected: false,
		},
		{
			name: "within closure tolerance",
			mutate: func(r *Recommendation) {
				r.Items[0].AllocationPercentage = 40.005
				r.Items[1].AllocationPercentage = 29.995
			},
			expected: true,
		},
		{
			name: "amount does not match percentage",
			mutate: func(r *Recommendation) {
				r.Items[1].InvestmentAmount = 2_500_000
			},
			expected: false,
		},
		{
			name: "no items",
			mutate: func(r *Recommendation) {
				r.Items = nil
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			r.Items = make([]AllocationItem, len(valid.Items))
			copy(r.Items, valid.Items)
			tt.mutate(&r)
			if got := r.Validate(); got != tt.expected {
				t.Errorf("Validate() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPolicy_MatchesAge(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		age      int
		expected bool
	}{
		{"inside range", Policy{TargetAgeMin: 19, TargetAgeMax: 34}, 25, true},
		{"lower bound inclusive", Policy{TargetAgeMin: 19, TargetAgeMax: 34}, 19, true},
		{"upper bound inclusive", Policy{TargetAgeMin: 19, TargetAgeMax: 34}, 34, true},
		{"below range", Policy{TargetAgeMin: 19, TargetAgeMax: 34}, 18, false},
		{"above range", Policy{TargetAgeMin: 19, TargetAgeMax: 34}, 35, false},
		{"zero-default range excludes adults", Policy{TargetAgeMin: 0, TargetAgeMax: 0}, 25, false},
		{"zero-default range matches age zero", Policy{TargetAgeMin: 0, TargetAgeMax: 0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.MatchesAge(tt.age); got != tt.expected {
				t.Errorf("MatchesAge(%d) = %v, want %v", tt.age, got, tt.expected)
			}
		})
	}
}

func TestProductFilter_Matches(t *testing.T) {
	product := Product{
		ProductCode: "BANK001",
		ProductType: ProductTypeDeposit,
		BankName:    "KB Kookmin Bank",
	}

	tests := []struct {
		name     string
		filter   ProductFilter
		expected bool
	}{
		{"empty filter matches", ProductFilter{}, true},
		{"type match", ProductFilter{ProductType: "deposit"}, true},
		{"type mismatch", ProductFilter{ProductType: "fund"}, false},
		{"bank match", ProductFilter{BankName: "KB Kookmin Bank"}, true},
		{"bank mismatch", ProductFilter{BankName: "Shinhan Bank"}, false},
		{"both set, one mismatched", ProductFilter{ProductType: "deposit", BankName: "Shinhan Bank"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(product); got != tt.expected {
				t.Errorf("Matches() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDeriveRiskLabel(t *testing.T) {
	tests := []struct {
		score    float64
		expected RiskLabel
	}{
		{0, RiskLabelLow},
		{1.9, RiskLabelLow},
		{2, RiskLabelMedium},
		{3.99, RiskLabelMedium},
		{4, RiskLabelHigh},
		{5, RiskLabelHigh},
	}

	for _, tt := range tests {
		if got := DeriveRiskLabel(tt.score); got != tt.expected {
			t.Errorf("DeriveRiskLabel(%v) = %v, want %v", tt.score, got, tt.expected)
		}
	}
}

func TestDeriveDiversityLabel(t *testing.T) {
	if got := DeriveDiversityLabel(61); got != DiversityGood {
		t.Errorf("DeriveDiversityLabel(61) = %v, want %v", got, DiversityGood)
	}
	if got := DeriveDiversityLabel(60); got != DiversityNeedsImprovement {
		t.Errorf("DeriveDiversityLabel(60) = %v, want %v", got, DiversityNeedsImprovement)
	}
	if got := DeriveDiversityLabel(20); got != DiversityNeedsImprovement {
		t.Errorf("DeriveDiversityLabel(20) = %v, want %v", got, DiversityNeedsImprovement)
	}
}
