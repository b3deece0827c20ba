package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BillingModelSortFields contains allowed sort fields for billing models
var BillingModelSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"kind":       true,
	"is_active":  true,
}

// OutcomeMetricSortFields contains allowed sort fields for outcome metrics
var OutcomeMetricSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"outcome_type":        true,
	"outcome_value":       true,
	"verification_status": true,
	"billing_status":      true,
	"calculated_fee":      true,
	"billing_period":      true,
}

// VerificationRuleSortFields contains allowed sort fields for verification rules
var VerificationRuleSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"outcome_type": true,
	"is_active":    true,
}

// CostEntrySortFields contains allowed sort fields for cost ledger entries
var CostEntrySortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"model_id":     true,
	"model_kind":   true,
	"amount":       true,
	"period_start": true,
}
