package handler

import (
	"time"

	appbilling "github.com/agentbill/backend/internal/application/billing"
	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/agentbill/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeHandler handles outcome metric lifecycle endpoints
type OutcomeHandler struct {
	BaseHandler
	outcomeService *appbilling.OutcomeService
}

// NewOutcomeHandler creates a new OutcomeHandler
func NewOutcomeHandler(outcomeService *appbilling.OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{outcomeService: outcomeService}
}

// RecordOutcomeRequest represents a request to record a business outcome
type RecordOutcomeRequest struct {
	ModelID      string          `json:"model_id" binding:"required,uuid"`
	OutcomeType  string          `json:"outcome_type" binding:"required,min=1,max=100"`
	OutcomeValue decimal.Decimal `json:"outcome_value" binding:"required"`
	Currency     string          `json:"currency" binding:"omitempty,len=3"`
}

// VerifyOutcomeRequest represents a verification decision for an outcome
type VerifyOutcomeRequest struct {
	Status   string `json:"status" binding:"required,oneof=verified rejected"`
	Verifier string `json:"verifier" binding:"omitempty,max=200"`
}

// MarkBilledRequest represents a bulk billing mark
type MarkBilledRequest struct {
	MetricIDs     []string `json:"metric_ids" binding:"required,min=1,dive,uuid"`
	BillingPeriod string   `json:"billing_period" binding:"required,billing_period"`
}

// OutcomeMetricResponse represents an outcome metric in API responses
type OutcomeMetricResponse struct {
	ID                 uuid.UUID       `json:"id"`
	OrgID              uuid.UUID       `json:"org_id"`
	ModelID            uuid.UUID       `json:"model_id"`
	OutcomeType        string          `json:"outcome_type"`
	OutcomeValue       decimal.Decimal `json:"outcome_value"`
	Currency           string          `json:"currency"`
	AttributionStart   time.Time       `json:"attribution_start"`
	AttributionEnd     time.Time       `json:"attribution_end"`
	VerificationStatus string          `json:"verification_status"`
	BillingStatus      string          `json:"billing_status"`
	CalculatedFee      decimal.Decimal `json:"calculated_fee"`
	TierApplied        *string         `json:"tier_applied,omitempty"`
	BonusApplied       decimal.Decimal `json:"bonus_applied"`
	VerifiedBy         *string         `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time      `json:"verified_at,omitempty"`
	BillingPeriod      *string         `json:"billing_period,omitempty"`
	dto.TimestampResponse
}

// VerifyOutcomeResponse pairs the updated metric with the rule evaluation
type VerifyOutcomeResponse struct {
	Metric     OutcomeMetricResponse `json:"metric"`
	Evaluation billing.Evaluation    `json:"evaluation"`
}

func toOutcomeMetricResponse(m *billing.OutcomeMetric) OutcomeMetricResponse {
	return OutcomeMetricResponse{
		ID:                 m.ID,
		OrgID:              m.OrgID,
		ModelID:            m.ModelID,
		OutcomeType:        m.OutcomeType,
		OutcomeValue:       m.OutcomeValue,
		Currency:           string(m.Currency),
		AttributionStart:   m.AttributionStart,
		AttributionEnd:     m.AttributionEnd,
		VerificationStatus: string(m.State.VerificationStatus()),
		BillingStatus:      string(m.State.BillingStatus()),
		CalculatedFee:      m.CalculatedFee,
		TierApplied:        m.TierApplied,
		BonusApplied:       m.BonusApplied,
		VerifiedBy:         m.VerifiedBy,
		VerifiedAt:         m.VerifiedAt,
		BillingPeriod:      m.BillingPeriod,
		TimestampResponse: dto.TimestampResponse{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// Record records a business outcome; the fee is computed at record time
// from the model's current configuration
func (h *OutcomeHandler) Record(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var req RecordOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	metric, err := h.outcomeService.RecordOutcome(c.Request.Context(), appbilling.RecordOutcomeInput{
		OrgID:        orgID,
		ModelID:      uuid.MustParse(req.ModelID),
		OutcomeType:  req.OutcomeType,
		OutcomeValue: req.OutcomeValue,
		Currency:     valueobject.Currency(req.Currency),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toOutcomeMetricResponse(metric))
}

// Verify applies a verification decision to a pending outcome. A violated
// minimum-value rule forces rejection regardless of the requested status.
func (h *OutcomeHandler) Verify(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid metric ID")
		return
	}

	var req VerifyOutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.outcomeService.VerifyOutcome(c.Request.Context(), appbilling.VerifyOutcomeInput{
		OrgID:     orgID,
		MetricID:  uuid.MustParse(uri.ID),
		Requested: billing.VerificationStatus(req.Status),
		Verifier:  req.Verifier,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, VerifyOutcomeResponse{
		Metric:     toOutcomeMetricResponse(result.Metric),
		Evaluation: result.Evaluation,
	})
}

// MarkBilled marks ready outcomes as billed for a billing period. Metrics
// not in a billable state are skipped, not failed.
func (h *OutcomeHandler) MarkBilled(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var req MarkBilledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.MetricIDs))
	for _, raw := range req.MetricIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	result, err := h.outcomeService.MarkOutcomesBilled(c.Request.Context(), orgID, ids, req.BillingPeriod)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List returns the organization's outcome metrics filtered by billing status
func (h *OutcomeHandler) List(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	status := billing.BillingStatus(c.DefaultQuery("billing_status", string(billing.BillingReady)))
	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if period := c.Query("billing_period"); period != "" {
		filter.Filters["billing_period"] = period
	}

	metrics, err := h.outcomeService.ListOutcomesByBillingStatus(c.Request.Context(), orgID, status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]OutcomeMetricResponse, 0, len(metrics))
	for i := range metrics {
		responses = append(responses, toOutcomeMetricResponse(&metrics[i]))
	}
	h.Success(c, responses)
}

// RegisterRoutes registers outcome metric routes
func (h *OutcomeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	outcomes := rg.Group("/outcomes")
	{
		outcomes.POST("", h.Record)
		outcomes.GET("", h.List)
		outcomes.POST("/:id/verify", h.Verify)
		outcomes.POST("/mark-billed", h.MarkBilled)
	}
}
