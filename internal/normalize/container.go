package normalize

// EntityKind selects which container keys and classification heuristic apply
// when extracting a record list from an arbitrary payload.
type EntityKind string

const (
	KindProduct EntityKind = "product"
	KindPolicy  EntityKind = "policy"
)

// Keys whose presence marks a record as belonging to one entity type. Used by
// the misclassification guard: a payload resolved for one kind whose records
// carry only the other kind's markers yields an empty list.
var (
	productMarkerKeys = []string{"productId", "product_id", "productName", "product_name", "bankName", "bank_name", "interestRate", "interest_rate"}
	policyMarkerKeys  = []string{"policyId", "policy_id", "plcyNo", "plcyNm", "policyName", "policy_name", "sprtTrgtMinAge", "sprtTrgtMaxAge", "bnftAmt"}
)

// ExtractList pulls the record list for the given kind out of an arbitrary
// decoded JSON payload. Resolution order: a bare top-level array is taken
// as-is; an object has its "result" envelope unwrapped first, then the kind's
// candidate container keys are probed in priority order and the first
// non-empty list wins. A container that actually holds the other entity type
// is rejected, returning an empty list rather than misclassified records.
// Never fails: unusable payloads yield an empty list.
func ExtractList(payload interface{}, kind EntityKind) []interface{} {
	switch typed := payload.(type) {
	case []interface{}:
		return classify(typed, kind)
	case map[string]interface{}:
		obj := typed
		if inner, ok := obj["result"].(map[string]interface{}); ok {
			obj = inner
		}
		for _, key := range containerKeys(kind) {
			if list, ok := obj[key].([]interface{}); ok && len(list) > 0 {
				return classify(list, kind)
			}
		}
		// A "result" envelope may itself hold the bare array.
		if inner, ok := typed["result"].([]interface{}); ok {
			return classify(inner, kind)
		}
		return nil
	default:
		return nil
	}
}

func containerKeys(kind EntityKind) []string {
	if kind == KindPolicy {
		return policyContainerKeys
	}
	return productContainerKeys
}

// classify applies the required-field heuristic: the list is accepted when at
// least one record carries a marker key of the expected kind, or when no
// record carries the opposite kind's markers either (sparse records still
// normalize to placeholders). A list that is recognizably the other entity
// type is rejected.
func classify(list []interface{}, kind EntityKind) []interface{} {
	if len(list) == 0 {
		return list
	}

	expected, opposite := productMarkerKeys, policyMarkerKeys
	if kind == KindPolicy {
		expected, opposite = policyMarkerKeys, productMarkerKeys
	}

	hasExpected := false
	hasOpposite := false
	for _, entry := range list {
		record, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if containsAny(record, expected) {
			hasExpected = true
		}
		if containsAny(record, opposite) {
			hasOpposite = true
		}
	}

	if !hasExpected && hasOpposite {
		return []interface{}{}
	}
	return list
}

func containsAny(record map[string]interface{}, keys []string) bool {
	for _, key := range keys {
		if _, ok := record[key]; ok {
			return true
		}
	}
	return false
}
