package billing

import (
	"fmt"

	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeVerificationRule bounds the value of a recorded outcome. Many rules
// may apply to one outcome type; a single violated minimum forces rejection
// regardless of other rules, while a violated maximum only raises a warning.
type OutcomeVerificationRule struct {
	shared.OrgAggregateRoot
	OutcomeType          string
	MinimumValue         *decimal.Decimal
	MaximumValue         *decimal.Decimal
	VerificationRequired bool
	IsActive             bool
}

// NewOutcomeVerificationRule creates a verification rule for an outcome type
func NewOutcomeVerificationRule(orgID uuid.UUID, outcomeType string) (*OutcomeVerificationRule, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if outcomeType == "" {
		return nil, shared.NewDomainError("INVALID_OUTCOME_TYPE", "Outcome type cannot be empty")
	}
	return &OutcomeVerificationRule{
		OrgAggregateRoot:     shared.NewOrgAggregateRoot(orgID),
		OutcomeType:          outcomeType,
		VerificationRequired: true,
		IsActive:             true,
	}, nil
}

// WithMinimumValue sets the rule's lower bound
func (r *OutcomeVerificationRule) WithMinimumValue(min decimal.Decimal) *OutcomeVerificationRule {
	r.MinimumValue = &min
	return r
}

// WithMaximumValue sets the rule's upper bound
func (r *OutcomeVerificationRule) WithMaximumValue(max decimal.Decimal) *OutcomeVerificationRule {
	r.MaximumValue = &max
	return r
}

// AppliesTo returns true when the rule is active and matches the metric's
// outcome type
func (r *OutcomeVerificationRule) AppliesTo(m *OutcomeMetric) bool {
	return r.IsActive && r.OutcomeType == m.OutcomeType
}

// RuleViolation describes one failed or warned rule bound
type RuleViolation struct {
	RuleID  uuid.UUID `json:"rule_id"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Evaluation is the result of checking an outcome metric against its rules.
// IsValid is false if and only if some minimum-value rule failed.
type Evaluation struct {
	IsValid     bool            `json:"is_valid"`
	FailedRules []RuleViolation `json:"failed_rules,omitempty"`
	Warnings    []RuleViolation `json:"warnings,omitempty"`
}

// EvaluateRules checks the metric's value against every applicable rule.
// No applicable rules means the metric is valid. Pure function.
func EvaluateRules(metric *OutcomeMetric, rules []OutcomeVerificationRule) Evaluation {
	eval := Evaluation{IsValid: true}

	for i := range rules {
		rule := &rules[i]
		if !rule.AppliesTo(metric) {
			continue
		}

		if rule.MinimumValue != nil && metric.OutcomeValue.LessThan(*rule.MinimumValue) {
			eval.IsValid = false
			eval.FailedRules = append(eval.FailedRules, RuleViolation{
				RuleID: rule.ID,
				Code:   "MINIMUM_VALUE_VIOLATED",
				Message: fmt.Sprintf("outcome value %s is below the minimum %s for %q",
					metric.OutcomeValue, rule.MinimumValue, rule.OutcomeType),
			})
		}

		if rule.MaximumValue != nil && metric.OutcomeValue.GreaterThan(*rule.MaximumValue) {
			eval.Warnings = append(eval.Warnings, RuleViolation{
				RuleID: rule.ID,
				Code:   "MAXIMUM_VALUE_EXCEEDED",
				Message: fmt.Sprintf("outcome value %s exceeds the maximum %s for %q",
					metric.OutcomeValue, rule.MaximumValue, rule.OutcomeType),
			})
		}
	}

	return eval
}
