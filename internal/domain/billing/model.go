package billing

import (
	"fmt"

	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ModelKind represents the pricing model of a billing configuration.
// The set is closed: the calculation facade dispatches exhaustively over it.
type ModelKind string

const (
	// ModelKindAgent charges a flat fee per agent seat
	ModelKindAgent ModelKind = "agent"

	// ModelKindActivity charges per discrete action with volume tiers
	ModelKindActivity ModelKind = "activity"

	// ModelKindOutcome charges a percentage of delivered business outcomes
	ModelKindOutcome ModelKind = "outcome"

	// ModelKindHybrid combines agent, activity, and outcome charges plus a base fee
	ModelKindHybrid ModelKind = "hybrid"

	// ModelKindWorkflow charges per named workflow execution with commitment brackets
	ModelKindWorkflow ModelKind = "workflow"
)

// String returns the string representation of ModelKind
func (k ModelKind) String() string {
	return string(k)
}

// IsValid returns true if the model kind is valid
func (k ModelKind) IsValid() bool {
	switch k {
	case ModelKindAgent, ModelKindActivity, ModelKindOutcome, ModelKindHybrid, ModelKindWorkflow:
		return true
	default:
		return false
	}
}

// AllModelKinds returns all valid model kinds
func AllModelKinds() []ModelKind {
	return []ModelKind{
		ModelKindAgent,
		ModelKindActivity,
		ModelKindOutcome,
		ModelKindHybrid,
		ModelKindWorkflow,
	}
}

// ParseModelKind parses a string into a ModelKind
func ParseModelKind(s string) (ModelKind, error) {
	k := ModelKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid model kind: %q", s)
	}
	return k, nil
}

// BillingModel is an organization's pricing configuration for one model kind.
// Exactly one configuration payload matching the kind is expected; the
// calculation facade, not storage, enforces the pairing.
type BillingModel struct {
	shared.OrgAggregateRoot
	Name     string
	Kind     ModelKind
	Currency valueobject.Currency
	IsActive bool

	// Configuration payloads; only the one matching Kind is consulted.
	Agent      *AgentConfig
	Activities []ActivityConfig
	Outcomes   []OutcomeConfig
	Workflow   *WorkflowConfig
	Hybrid     *HybridConfig
}

// NewBillingModel creates a new billing model for an organization
func NewBillingModel(orgID uuid.UUID, name string, kind ModelKind) (*BillingModel, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Billing model name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewConfigurationError("UNSUPPORTED_MODEL_KIND",
			fmt.Sprintf("Unsupported model kind: %q", kind))
	}

	return &BillingModel{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Kind:             kind,
		Currency:         valueobject.DefaultCurrency,
		IsActive:         true,
	}, nil
}

// WithCurrency sets the model currency
func (m *BillingModel) WithCurrency(currency valueobject.Currency) *BillingModel {
	if currency != "" {
		m.Currency = currency
	}
	return m
}

// WithAgentConfig attaches an agent configuration
func (m *BillingModel) WithAgentConfig(cfg AgentConfig) *BillingModel {
	m.Agent = &cfg
	return m
}

// WithActivityConfigs attaches activity configurations
func (m *BillingModel) WithActivityConfigs(cfgs ...ActivityConfig) *BillingModel {
	m.Activities = append(m.Activities, cfgs...)
	return m
}

// WithOutcomeConfigs attaches outcome configurations
func (m *BillingModel) WithOutcomeConfigs(cfgs ...OutcomeConfig) *BillingModel {
	m.Outcomes = append(m.Outcomes, cfgs...)
	return m
}

// WithWorkflowConfig attaches a workflow configuration
func (m *BillingModel) WithWorkflowConfig(cfg WorkflowConfig) *BillingModel {
	m.Workflow = &cfg
	return m
}

// WithHybridConfig attaches a hybrid configuration
func (m *BillingModel) WithHybridConfig(cfg HybridConfig) *BillingModel {
	m.Hybrid = &cfg
	return m
}

// OutcomeConfigForType returns the outcome configuration for the given
// outcome type, or nil if none is attached. For hybrid models the hybrid
// outcome sub-configs are searched.
func (m *BillingModel) OutcomeConfigForType(outcomeType string) *OutcomeConfig {
	configs := m.Outcomes
	if m.Kind == ModelKindHybrid && m.Hybrid != nil {
		configs = m.Hybrid.Outcomes
	}
	for i := range configs {
		if configs[i].OutcomeType == outcomeType {
			return &configs[i]
		}
	}
	return nil
}

// Activate marks the model active
func (m *BillingModel) Activate() {
	m.IsActive = true
}

// Deactivate marks the model inactive
func (m *BillingModel) Deactivate() {
	m.IsActive = false
}
