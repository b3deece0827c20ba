package billing

import (
	"github.com/shopspring/decimal"
)

// MaxTiers is the maximum number of volume tiers per configuration
const MaxTiers = 3

// BillingFrequency represents how often a recurring fee is charged
type BillingFrequency string

const (
	BillingFrequencyMonthly BillingFrequency = "monthly"
	BillingFrequencyYearly  BillingFrequency = "yearly"
)

// IsValid returns true if the billing frequency is valid
func (f BillingFrequency) IsValid() bool {
	switch f {
	case BillingFrequencyMonthly, BillingFrequencyYearly:
		return true
	}
	return false
}

// Tier is a single volume-pricing band. Threshold is a cumulative unit
// count, not a band width; Price is the unit price (or percentage, for
// outcome tiers) charged for units consumed within the band.
type Tier struct {
	Threshold decimal.Decimal `json:"threshold"`
	Price     decimal.Decimal `json:"price"`
}

// IsZero returns true when the tier is absent (missing or zero threshold)
func (t Tier) IsZero() bool {
	return t.Threshold.LessThanOrEqual(decimal.Zero)
}

// VolumeDiscount reduces a total by Percentage once the relevant quantity
// reaches Threshold
type VolumeDiscount struct {
	Enabled    bool            `json:"enabled"`
	Threshold  decimal.Decimal `json:"threshold"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AppliesTo returns true when the discount is enabled and the quantity
// meets the threshold
func (d VolumeDiscount) AppliesTo(quantity decimal.Decimal) bool {
	return d.Enabled && d.Threshold.GreaterThan(decimal.Zero) &&
		quantity.GreaterThanOrEqual(d.Threshold)
}

// SuccessBonus is reported alongside an outcome fee when the outcome value
// meets Threshold; it is never added into the fee itself.
type SuccessBonus struct {
	Threshold  decimal.Decimal `json:"threshold"`
	Percentage decimal.Decimal `json:"percentage"`
}

// AgentConfig prices flat per-seat billing
type AgentConfig struct {
	BaseFee          decimal.Decimal  `json:"base_fee"`
	BillingFrequency BillingFrequency `json:"billing_frequency"`
	SetupFee         decimal.Decimal  `json:"setup_fee"`
	VolumeDiscount   VolumeDiscount   `json:"volume_discount"`
	TierLabel        string           `json:"tier_label,omitempty"`
}

// ActivityConfig prices a single activity type per unit with volume tiers
type ActivityConfig struct {
	ActivityType    string          `json:"activity_type"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	BaseFeePerAgent decimal.Decimal `json:"base_fee_per_agent"`
	Tiers           []Tier          `json:"tiers,omitempty"`
	MinimumCharge   decimal.Decimal `json:"minimum_charge"`
	IsActive        bool            `json:"is_active"`
}

// OutcomeConfig prices a single outcome type as a percentage of outcome value
type OutcomeConfig struct {
	OutcomeType           string          `json:"outcome_type"`
	Percentage            decimal.Decimal `json:"percentage"`
	BasePlatformFee       decimal.Decimal `json:"base_platform_fee"`
	AttributionWindowDays int             `json:"attribution_window_days"`
	RequiresVerification  bool            `json:"requires_verification"`
	Tiers                 []Tier          `json:"tiers,omitempty"`
	SuccessBonus          SuccessBonus    `json:"success_bonus"`
	MonthlyCap            decimal.Decimal `json:"monthly_cap"`
	RiskPremiumPercentage decimal.Decimal `json:"risk_premium_percentage"`
}

// WorkflowType prices one named workflow with its own tiers and floor
type WorkflowType struct {
	Name             string          `json:"name"`
	PricePerWorkflow decimal.Decimal `json:"price_per_workflow"`
	Tiers            []Tier          `json:"tiers,omitempty"`
	MinimumCharge    decimal.Decimal `json:"minimum_charge"`
}

// CommitmentTier declares a usage/revenue-minimum discount bracket.
// It is consumed by an external commitment-tracking collaborator and is
// informational input to the calculation only.
type CommitmentTier struct {
	Name               string          `json:"name"`
	MinWorkflows       int64           `json:"min_workflows"`
	IncludedWorkflows  int64           `json:"included_workflows"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// WorkflowConfig prices per-workflow-type executions with a global discount
// and an overage multiplier applied once a commitment is exceeded
type WorkflowConfig struct {
	BasePlatformFee   decimal.Decimal  `json:"base_platform_fee"`
	VolumeDiscount    VolumeDiscount   `json:"volume_discount"`
	OverageMultiplier decimal.Decimal  `json:"overage_multiplier"`
	Types             []WorkflowType   `json:"types"`
	CommitmentTiers   []CommitmentTier `json:"commitment_tiers,omitempty"`
}

// TypeByName returns the workflow type with the given name, or nil
func (c *WorkflowConfig) TypeByName(name string) *WorkflowType {
	for i := range c.Types {
		if c.Types[i].Name == name {
			return &c.Types[i]
		}
	}
	return nil
}

// HybridConfig combines agent, activity, and outcome pricing plus a flat
// base fee. Absent sub-configs contribute exactly zero.
type HybridConfig struct {
	BaseFee    decimal.Decimal  `json:"base_fee"`
	Agent      *AgentConfig     `json:"agent,omitempty"`
	Activities []ActivityConfig `json:"activities,omitempty"`
	Outcomes   []OutcomeConfig  `json:"outcomes,omitempty"`
}

func copyTiers(tiers []Tier) []Tier {
	if tiers == nil {
		return nil
	}
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// Clone returns a deep copy of the config
func (c AgentConfig) Clone() AgentConfig {
	return c
}

// Clone returns a deep copy of the config
func (c ActivityConfig) Clone() ActivityConfig {
	c.Tiers = copyTiers(c.Tiers)
	return c
}

// Clone returns a deep copy of the config
func (c OutcomeConfig) Clone() OutcomeConfig {
	c.Tiers = copyTiers(c.Tiers)
	return c
}

// Clone returns a deep copy of the config
func (c WorkflowConfig) Clone() WorkflowConfig {
	types := make([]WorkflowType, len(c.Types))
	for i, wt := range c.Types {
		wt.Tiers = copyTiers(wt.Tiers)
		types[i] = wt
	}
	c.Types = types
	if c.CommitmentTiers != nil {
		commitments := make([]CommitmentTier, len(c.CommitmentTiers))
		copy(commitments, c.CommitmentTiers)
		c.CommitmentTiers = commitments
	}
	return c
}

// Clone returns a deep copy of the config
func (c HybridConfig) Clone() HybridConfig {
	if c.Agent != nil {
		agent := c.Agent.Clone()
		c.Agent = &agent
	}
	if c.Activities != nil {
		activities := make([]ActivityConfig, len(c.Activities))
		for i, a := range c.Activities {
			activities[i] = a.Clone()
		}
		c.Activities = activities
	}
	if c.Outcomes != nil {
		outcomes := make([]OutcomeConfig, len(c.Outcomes))
		for i, o := range c.Outcomes {
			outcomes[i] = o.Clone()
		}
		c.Outcomes = outcomes
	}
	return c
}
