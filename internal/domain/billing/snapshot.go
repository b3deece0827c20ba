package billing

import (
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ModelSnapshot is an immutable copy of a billing model taken at calculation
// time. Strategies read the snapshot only, so a concurrent configuration
// update can never be partially observed mid-calculation.
type ModelSnapshot struct {
	ID       uuid.UUID
	OrgID    uuid.UUID
	Name     string
	Kind     ModelKind
	Currency valueobject.Currency
	IsActive bool

	Agent      *AgentConfig
	Activities []ActivityConfig
	Outcomes   []OutcomeConfig
	Workflow   *WorkflowConfig
	Hybrid     *HybridConfig
}

// Snapshot returns an immutable value copy of the model, deep-copying all
// tier slices
func (m *BillingModel) Snapshot() ModelSnapshot {
	snap := ModelSnapshot{
		ID:       m.ID,
		OrgID:    m.OrgID,
		Name:     m.Name,
		Kind:     m.Kind,
		Currency: m.Currency,
		IsActive: m.IsActive,
	}

	if m.Agent != nil {
		agent := m.Agent.Clone()
		snap.Agent = &agent
	}
	if m.Activities != nil {
		snap.Activities = make([]ActivityConfig, len(m.Activities))
		for i, a := range m.Activities {
			snap.Activities[i] = a.Clone()
		}
	}
	if m.Outcomes != nil {
		snap.Outcomes = make([]OutcomeConfig, len(m.Outcomes))
		for i, o := range m.Outcomes {
			snap.Outcomes[i] = o.Clone()
		}
	}
	if m.Workflow != nil {
		workflow := m.Workflow.Clone()
		snap.Workflow = &workflow
	}
	if m.Hybrid != nil {
		hybrid := m.Hybrid.Clone()
		snap.Hybrid = &hybrid
	}

	return snap
}

// OutcomeConfigForType returns the outcome configuration for the given
// outcome type, or nil if none is present in the snapshot
func (s ModelSnapshot) OutcomeConfigForType(outcomeType string) *OutcomeConfig {
	configs := s.Outcomes
	if s.Kind == ModelKindHybrid && s.Hybrid != nil {
		configs = s.Hybrid.Outcomes
	}
	for i := range configs {
		if configs[i].OutcomeType == outcomeType {
			cfg := configs[i].Clone()
			return &cfg
		}
	}
	return nil
}
