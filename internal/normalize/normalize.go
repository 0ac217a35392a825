// Package normalize maps raw records from any source (remote API, seed file,
// mock generator) into canonical Product and Policy records. Resolution is
// table-driven: each canonical field has an ordered list of key aliases and
// the first present, non-null alias wins. Functions here are pure and never
// fail; absent fields resolve to documented defaults.
package normalize

import (
	"strconv"
	"strings"

	"github.com/youthfin/yofin/internal/models"
)

// Placeholder names assigned when a record carries no usable name field.
const (
	UnknownProductName = "Unknown Product"
	UnknownPolicyName  = "Unknown Policy"
)

// Ordered alias tables, one per canonical field. The plcy*/sprt*/bnft*
// aliases are the Korean youth-policy open-API dialect; the camelCase set is
// the bank product service dialect.
var (
	productCodeAliases    = []string{"productId", "product_id", "id", "code", "productCode", "product_code"}
	productNameAliases    = []string{"productName", "product_name", "name", "title"}
	productTypeAliases    = []string{"productType", "product_type", "type", "category"}
	bankNameAliases       = []string{"bankName", "bank_name", "bank", "issuer"}
	interestRateAliases   = []string{"interestRate", "interest_rate", "rate"}
	minAmountAliases      = []string{"minAmount", "min_amount", "min"}
	maxAmountAliases      = []string{"maxAmount", "max_amount", "max"}
	termMonthsAliases     = []string{"termMonths", "term_months", "term"}
	riskLevelAliases      = []string{"riskLevel", "risk_level", "risk"}
	featuresAliases       = []string{"features", "feature_list", "tags"}
	targetCustomerAliases = []string{"targetCustomers", "target_customers", "target"}

	policyCodeAliases    = []string{"policyId", "policy_id", "plcyNo", "id", "code", "policyCode", "policy_code"}
	policyNameAliases    = []string{"policyName", "policy_name", "plcyNm", "name", "title"}
	ageMinAliases        = []string{"targetAgeMin", "target_age_min", "sprtTrgtMinAge", "minAge", "min_age"}
	ageMaxAliases        = []string{"targetAgeMax", "target_age_max", "sprtTrgtMaxAge", "maxAge", "max_age"}
	benefitAmountAliases = []string{"benefitAmount", "benefit_amount", "bnftAmt", "amount"}
	requirementsAliases  = []string{"requirements", "addAplyQlfcCndCn", "conditions"}
	applyPeriodAliases   = []string{"applicationPeriod", "application_period", "aplyYmd", "period"}
	policyTypeAliases    = []string{"policyType", "policy_type", "lclsfNm", "type", "category"}
	descriptionAliases   = []string{"description", "plcyExplnCn", "summary"}
)

// Container key candidates, probed in priority order after unwrapping a
// "result" envelope.
var (
	productContainerKeys = []string{"bankProducts", "products", "data", "list", "items"}
	policyContainerKeys  = []string{"youthPolicyList", "policies", "data", "list", "items"}
)

// resolve returns the first present, non-nil value among the aliases.
func resolve(raw map[string]interface{}, aliases []string) (interface{}, bool) {
	for _, key := range aliases {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// resolveString coerces the first matching alias to a string.
func resolveString(raw map[string]interface{}, aliases []string, fallback string) string {
	v, ok := resolve(raw, aliases)
	if !ok {
		return fallback
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fallback
	}
}

// resolveFloat coerces the first matching alias to a float64. Numeric strings
// are parsed; comma thousand separators are tolerated. Anything else yields
// the fallback, so output is always a valid finite number.
func resolveFloat(raw map[string]interface{}, aliases []string, fallback float64) float64 {
	v, ok := resolve(raw, aliases)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if cleaned == "" {
			return fallback
		}
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f
		}
		return fallback
	default:
		return fallback
	}
}

// resolveInt coerces the first matching alias to an int, truncating floats.
func resolveInt(raw map[string]interface{}, aliases []string, fallback int) int {
	return int(resolveFloat(raw, aliases, float64(fallback)))
}

// resolveStringSlice coerces the first matching alias to a []string.
func resolveStringSlice(raw map[string]interface{}, aliases []string) []string {
	v, ok := resolve(raw, aliases)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(list) == "" {
			return nil
		}
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}

// clampRiskLevel forces a risk level into [1,5], using the mid default for
// absent or nonsensical values.
func clampRiskLevel(level int) int {
	if level < models.MinRiskLevel {
		return models.DefaultRiskLevel
	}
	if level > models.MaxRiskLevel {
		return models.MaxRiskLevel
	}
	return level
}

// Product normalizes one raw record into a canonical Product. The untouched
// input is preserved under Raw.
func Product(raw map[string]interface{}) models.Product {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	riskLevel := models.DefaultRiskLevel
	if _, present := resolve(raw, riskLevelAliases); present {
		riskLevel = clampRiskLevel(resolveInt(raw, riskLevelAliases, models.DefaultRiskLevel))
	}

	return models.Product{
		ProductCode:     resolveString(raw, productCodeAliases, ""),
		ProductName:     resolveString(raw, productNameAliases, UnknownProductName),
		ProductType:     normalizeProductType(resolveString(raw, productTypeAliases, "")),
		BankName:        resolveString(raw, bankNameAliases, ""),
		InterestRate:    resolveFloat(raw, interestRateAliases, 0),
		MinAmount:       resolveFloat(raw, minAmountAliases, 0),
		MaxAmount:       resolveFloat(raw, maxAmountAliases, 0),
		TermMonths:      resolveInt(raw, termMonthsAliases, 0),
		RiskLevel:       riskLevel,
		Features:        resolveStringSlice(raw, featuresAliases),
		TargetCustomers: resolveString(raw, targetCustomerAliases, ""),
		Raw:             raw,
	}
}

// Policy normalizes one raw record into a canonical Policy. An absent age
// range resolves to [0,0]: such a policy matches only age-0 users under the
// inclusive-range filter, never "everyone".
func Policy(raw map[string]interface{}) models.Policy {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	return models.Policy{
		PolicyCode:        resolveString(raw, policyCodeAliases, ""),
		PolicyName:        resolveString(raw, policyNameAliases, UnknownPolicyName),
		TargetAgeMin:      resolveInt(raw, ageMinAliases, 0),
		TargetAgeMax:      resolveInt(raw, ageMaxAliases, 0),
		BenefitAmount:     resolveFloat(raw, benefitAmountAliases, 0),
		Requirements:      resolveString(raw, requirementsAliases, ""),
		ApplicationPeriod: resolveString(raw, applyPeriodAliases, ""),
		PolicyType:        resolveString(raw, policyTypeAliases, ""),
		Description:       resolveString(raw, descriptionAliases, ""),
		Raw:               raw,
	}
}

// normalizeProductType maps free-form type strings onto the canonical enum.
// Unrecognized non-empty values pass through so sector allocation still keys
// on them.
func normalizeProductType(t string) models.ProductType {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "deposit", "fixed deposit", "time deposit":
		return models.ProductTypeDeposit
	case "savings", "saving", "installment savings":
		return models.ProductTypeSavings
	case "fund", "etf", "securities":
		return models.ProductTypeFund
	case "":
		return models.ProductTypeOther
	default:
		return models.ProductType(strings.ToLower(strings.TrimSpace(t)))
	}
}

// Products normalizes every element of a raw list, skipping entries that are
// not objects.
func Products(rawList []interface{}) []models.Product {
	out := make([]models.Product, 0, len(rawList))
	for _, entry := range rawList {
		if m, ok := entry.(map[string]interface{}); ok {
			out = append(out, Product(m))
		}
	}
	return out
}

// Policies normalizes every element of a raw list, skipping non-objects.
func Policies(rawList []interface{}) []models.Policy {
	out := make([]models.Policy, 0, len(rawList))
	for _, entry := range rawList {
		if m, ok := entry.(map[string]interface{}); ok {
			out = append(out, Policy(m))
		}
	}
	return out
}
