package models

import "time"

// Product is the canonical bank product record, independent of the source
// schema dialect it was normalized from. Raw preserves the untouched source
// record for audit.
type Product struct {
	ProductCode     string                 `json:"product_code"`
	ProductName     string                 `json:"product_name"`
	ProductType     ProductType            `json:"product_type"`
	BankName        string                 `json:"bank_name"`
	InterestRate    float64                `json:"interest_rate"` // nominal annual rate, percent
	MinAmount       float64                `json:"min_amount"`
	MaxAmount       float64                `json:"max_amount"`
	TermMonths      int                    `json:"term_months"` // 0 = open-ended
	RiskLevel       int                    `json:"risk_level"`  // 1-5
	Features        []string               `json:"features,omitempty"`
	TargetCustomers string                 `json:"target_customers,omitempty"`
	Raw             map[string]interface{} `json:"raw,omitempty"`
	CreatedAt       time.Time              `json:"created_at,omitempty"`
	UpdatedAt       time.Time              `json:"updated_at,omitempty"`
}

// ProductType classifies a product for sector-allocation purposes.
type ProductType string

const (
	ProductTypeDeposit ProductType = "deposit"
	ProductTypeSavings ProductType = "savings"
	ProductTypeFund    ProductType = "fund"
	ProductTypeOther   ProductType = "other"
)

// Product risk levels span [1,5].
const (
	MinRiskLevel = 1
	MaxRiskLevel = 5

	// DefaultRiskLevel is assigned when a source record carries no risk field.
	DefaultRiskLevel = 2
)

// ProductFilter narrows a product fetch. Zero values mean no restriction.
type ProductFilter struct {
	ProductType string `json:"product_type,omitempty"`
	BankName    string `json:"bank_name,omitempty"`
}

// Matches reports whether the product passes the filter. Filter semantics are
// identical in live and mock gateway modes.
func (f ProductFilter) Matches(p Product) bool {
	if f.ProductType != "" && string(p.ProductType) != f.ProductType {
		return false
	}
	if f.BankName != "" && p.BankName != f.BankName {
		return false
	}
	return true
}
