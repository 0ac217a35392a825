package models

import "time"

// Policy is the canonical youth-benefit policy record. The target age range
// is inclusive on both ends. Raw preserves the untouched source record.
type Policy struct {
	PolicyCode        string                 `json:"policy_code"`
	PolicyName        string                 `json:"policy_name"`
	TargetAgeMin      int                    `json:"target_age_min"`
	TargetAgeMax      int                    `json:"target_age_max"`
	BenefitAmount     float64                `json:"benefit_amount"`
	Requirements      string                 `json:"requirements,omitempty"`
	ApplicationPeriod string                 `json:"application_period,omitempty"`
	PolicyType        string                 `json:"policy_type,omitempty"`
	Description       string                 `json:"description,omitempty"`
	Raw               map[string]interface{} `json:"raw,omitempty"`
	CreatedAt         time.Time              `json:"created_at,omitempty"`
	UpdatedAt         time.Time              `json:"updated_at,omitempty"`
}

// MatchesAge reports whether age falls inside the policy's inclusive target
// range. A normalized policy with no age bounds carries [0,0] and therefore
// matches only age 0; that literal behavior is deliberate.
func (p Policy) MatchesAge(age int) bool {
	return p.TargetAgeMin <= age && age <= p.TargetAgeMax
}

// PolicyFilter restricts policy fetches. A nil Age means no age restriction.
type PolicyFilter struct {
	Age        *int   `json:"age,omitempty"`
	PolicyType string `json:"policy_type,omitempty"`
}

// Matches reports whether the policy satisfies every set filter field.
func (f PolicyFilter) Matches(p Policy) bool {
	if f.Age != nil && !p.MatchesAge(*f.Age) {
		return false
	}
	if f.PolicyType != "" && p.PolicyType != f.PolicyType {
		return false
	}
	return true
}
