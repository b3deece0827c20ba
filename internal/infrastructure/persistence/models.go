package persistence

import (
	"encoding/json"
	"time"

	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("billing.persistence")

// BillingModelModel is the GORM model for billing model configurations.
// The kind-specific configuration payloads are stored as JSONB columns;
// only the payload matching the kind is consulted at calculation time.
type BillingModelModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Kind      string    `gorm:"type:varchar(20);not null;index"`
	Currency  string    `gorm:"type:varchar(3);not null;default:'USD'"`
	IsActive  bool      `gorm:"not null;default:true;index"`
	Version   int       `gorm:"not null;default:1"`
	Agent     []byte    `gorm:"column:agent_config;type:jsonb"`
	Activity  []byte    `gorm:"column:activity_configs;type:jsonb"`
	Outcome   []byte    `gorm:"column:outcome_configs;type:jsonb"`
	Workflow  []byte    `gorm:"column:workflow_config;type:jsonb"`
	Hybrid    []byte    `gorm:"column:hybrid_config;type:jsonb"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (BillingModelModel) TableName() string {
	return "billing_models"
}

// ToEntity converts the model to a domain entity
func (m *BillingModelModel) ToEntity() *billing.BillingModel {
	entity := &billing.BillingModel{
		OrgAggregateRoot: orgAggregateRoot(m.ID, m.OrgID, m.Version, m.CreatedAt, m.UpdatedAt),
		Name:             m.Name,
		Kind:             billing.ModelKind(m.Kind),
		Currency:         valueobject.Currency(m.Currency),
		IsActive:         m.IsActive,
	}

	unmarshalConfig(m.ID, "agent_config", m.Agent, &entity.Agent)
	unmarshalConfig(m.ID, "activity_configs", m.Activity, &entity.Activities)
	unmarshalConfig(m.ID, "outcome_configs", m.Outcome, &entity.Outcomes)
	unmarshalConfig(m.ID, "workflow_config", m.Workflow, &entity.Workflow)
	unmarshalConfig(m.ID, "hybrid_config", m.Hybrid, &entity.Hybrid)

	return entity
}

// FromEntity populates the model from a domain entity
func (m *BillingModelModel) FromEntity(e *billing.BillingModel) {
	m.ID = e.ID
	m.OrgID = e.OrgID
	m.Name = e.Name
	m.Kind = e.Kind.String()
	m.Currency = string(e.Currency)
	m.IsActive = e.IsActive
	m.Version = e.Version
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt

	m.Agent = marshalConfig(e.Agent)
	m.Activity = marshalConfig(e.Activities)
	m.Outcome = marshalConfig(e.Outcomes)
	m.Workflow = marshalConfig(e.Workflow)
	m.Hybrid = marshalConfig(e.Hybrid)
}

// OutcomeMetricModel is the GORM model for outcome metrics. The combined
// lifecycle state is persisted on its two axes and revalidated on load.
type OutcomeMetricModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrgID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	ModelID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	OutcomeType        string          `gorm:"type:varchar(100);not null;index"`
	OutcomeValue       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency           string          `gorm:"type:varchar(3);not null;default:'USD'"`
	AttributionStart   time.Time       `gorm:"not null"`
	AttributionEnd     time.Time       `gorm:"not null"`
	VerificationStatus string          `gorm:"type:varchar(20);not null;index"`
	BillingStatus      string          `gorm:"type:varchar(20);not null;index"`
	CalculatedFee      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TierApplied        *string         `gorm:"type:varchar(20)"`
	BonusApplied       decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	VerifiedBy         *string         `gorm:"type:varchar(255)"`
	VerifiedAt         *time.Time
	BillingPeriod      *string   `gorm:"type:varchar(10);index"`
	Version            int       `gorm:"not null;default:1"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (OutcomeMetricModel) TableName() string {
	return "outcome_metrics"
}

// ToEntity converts the model to a domain entity
func (m *OutcomeMetricModel) ToEntity() *billing.OutcomeMetric {
	state, err := billing.ParseOutcomeState(
		billing.VerificationStatus(m.VerificationStatus),
		billing.BillingStatus(m.BillingStatus),
	)
	if err != nil {
		modelLogger.Warn("invalid persisted outcome state, resetting to pending",
			zap.String("metric_id", m.ID.String()),
			zap.Error(err))
		state = billing.StatePendingVerification()
	}

	return &billing.OutcomeMetric{
		OrgAggregateRoot: orgAggregateRoot(m.ID, m.OrgID, m.Version, m.CreatedAt, m.UpdatedAt),
		ModelID:          m.ModelID,
		OutcomeType:      m.OutcomeType,
		OutcomeValue:     m.OutcomeValue,
		Currency:         valueobject.Currency(m.Currency),
		AttributionStart: m.AttributionStart,
		AttributionEnd:   m.AttributionEnd,
		State:            state,
		CalculatedFee:    m.CalculatedFee,
		TierApplied:      m.TierApplied,
		BonusApplied:     m.BonusApplied,
		VerifiedBy:       m.VerifiedBy,
		VerifiedAt:       m.VerifiedAt,
		BillingPeriod:    m.BillingPeriod,
	}
}

// FromEntity populates the model from a domain entity
func (m *OutcomeMetricModel) FromEntity(e *billing.OutcomeMetric) {
	m.ID = e.ID
	m.OrgID = e.OrgID
	m.ModelID = e.ModelID
	m.OutcomeType = e.OutcomeType
	m.OutcomeValue = e.OutcomeValue
	m.Currency = string(e.Currency)
	m.AttributionStart = e.AttributionStart
	m.AttributionEnd = e.AttributionEnd
	m.VerificationStatus = string(e.State.VerificationStatus())
	m.BillingStatus = string(e.State.BillingStatus())
	m.CalculatedFee = e.CalculatedFee
	m.TierApplied = e.TierApplied
	m.BonusApplied = e.BonusApplied
	m.VerifiedBy = e.VerifiedBy
	m.VerifiedAt = e.VerifiedAt
	m.BillingPeriod = e.BillingPeriod
	m.Version = e.Version
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// VerificationRuleModel is the GORM model for outcome verification rules
type VerificationRuleModel struct {
	ID                   uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OrgID                uuid.UUID        `gorm:"type:uuid;not null;index"`
	OutcomeType          string           `gorm:"type:varchar(100);not null;index"`
	MinimumValue         *decimal.Decimal `gorm:"type:decimal(20,4)"`
	MaximumValue         *decimal.Decimal `gorm:"type:decimal(20,4)"`
	VerificationRequired bool             `gorm:"not null;default:true"`
	IsActive             bool             `gorm:"not null;default:true;index"`
	Version              int              `gorm:"not null;default:1"`
	CreatedAt            time.Time        `gorm:"autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (VerificationRuleModel) TableName() string {
	return "outcome_verification_rules"
}

// ToEntity converts the model to a domain entity
func (m *VerificationRuleModel) ToEntity() *billing.OutcomeVerificationRule {
	return &billing.OutcomeVerificationRule{
		OrgAggregateRoot:     orgAggregateRoot(m.ID, m.OrgID, m.Version, m.CreatedAt, m.UpdatedAt),
		OutcomeType:          m.OutcomeType,
		MinimumValue:         m.MinimumValue,
		MaximumValue:         m.MaximumValue,
		VerificationRequired: m.VerificationRequired,
		IsActive:             m.IsActive,
	}
}

// FromEntity populates the model from a domain entity
func (m *VerificationRuleModel) FromEntity(e *billing.OutcomeVerificationRule) {
	m.ID = e.ID
	m.OrgID = e.OrgID
	m.OutcomeType = e.OutcomeType
	m.MinimumValue = e.MinimumValue
	m.MaximumValue = e.MaximumValue
	m.VerificationRequired = e.VerificationRequired
	m.IsActive = e.IsActive
	m.Version = e.Version
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// CostEntryModel is the GORM model for cost ledger entries
type CostEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrgID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ModelID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ModelKind   string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	PeriodStart time.Time       `gorm:"not null;index"`
	PeriodEnd   time.Time       `gorm:"not null"`
	Description string          `gorm:"type:text"`
	Usage       []byte          `gorm:"column:usage_data;type:jsonb;default:'{}'"`
	Version     int             `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (CostEntryModel) TableName() string {
	return "cost_entries"
}

// ToEntity converts the model to a domain entity
func (m *CostEntryModel) ToEntity() *billing.CostEntry {
	var usage billing.UsageData
	if len(m.Usage) > 0 {
		if err := json.Unmarshal(m.Usage, &usage); err != nil {
			modelLogger.Warn("failed to parse usage_data JSON",
				zap.String("entry_id", m.ID.String()),
				zap.Error(err))
		}
	}
	if usage == nil {
		usage = make(billing.UsageData)
	}

	return &billing.CostEntry{
		OrgAggregateRoot: orgAggregateRoot(m.ID, m.OrgID, m.Version, m.CreatedAt, m.UpdatedAt),
		ModelID:          m.ModelID,
		ModelKind:        billing.ModelKind(m.ModelKind),
		Amount:           m.Amount,
		Currency:         valueobject.Currency(m.Currency),
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		Description:      m.Description,
		Usage:            usage,
	}
}

// FromEntity populates the model from a domain entity
func (m *CostEntryModel) FromEntity(e *billing.CostEntry) {
	m.ID = e.ID
	m.OrgID = e.OrgID
	m.ModelID = e.ModelID
	m.ModelKind = e.ModelKind.String()
	m.Amount = e.Amount
	m.Currency = string(e.Currency)
	m.PeriodStart = e.PeriodStart
	m.PeriodEnd = e.PeriodEnd
	m.Description = e.Description
	m.Version = e.Version
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt

	if data, err := json.Marshal(e.Usage); err == nil {
		m.Usage = data
	} else {
		m.Usage = []byte(`{}`)
	}
}

func orgAggregateRoot(id, orgID uuid.UUID, version int, createdAt, updatedAt time.Time) shared.OrgAggregateRoot {
	return shared.OrgAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        id,
				CreatedAt: createdAt,
				UpdatedAt: updatedAt,
			},
			Version: version,
		},
		OrgID: orgID,
	}
}

func marshalConfig(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	return data
}

func unmarshalConfig[T any](id uuid.UUID, column string, data []byte, dst *T) {
	if len(data) == 0 || string(data) == "null" {
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		modelLogger.Warn("failed to parse configuration JSON",
			zap.String("model_id", id.String()),
			zap.String("column", column),
			zap.Error(err))
	}
}
