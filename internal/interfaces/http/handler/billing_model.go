package handler

import (
	appbilling "github.com/agentbill/backend/internal/application/billing"
	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/agentbill/backend/internal/domain/shared"
	"github.com/agentbill/backend/internal/domain/shared/valueobject"
	"github.com/agentbill/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingModelHandler handles billing model configuration endpoints
type BillingModelHandler struct {
	BaseHandler
	modelService *appbilling.ModelService
}

// NewBillingModelHandler creates a new BillingModelHandler
func NewBillingModelHandler(modelService *appbilling.ModelService) *BillingModelHandler {
	return &BillingModelHandler{modelService: modelService}
}

// CreateBillingModelRequest represents a request to create a billing model.
// The configuration payload matching the declared kind is required.
type CreateBillingModelRequest struct {
	Name       string                   `json:"name" binding:"required,min=1,max=200"`
	Kind       string                   `json:"kind" binding:"required,oneof=agent activity outcome workflow hybrid"`
	Currency   string                   `json:"currency" binding:"omitempty,len=3"`
	Agent      *billing.AgentConfig     `json:"agent,omitempty"`
	Activities []billing.ActivityConfig `json:"activities,omitempty"`
	Outcomes   []billing.OutcomeConfig  `json:"outcomes,omitempty"`
	Workflow   *billing.WorkflowConfig  `json:"workflow,omitempty"`
	Hybrid     *billing.HybridConfig    `json:"hybrid,omitempty"`
}

// SetActiveRequest toggles a model's active flag
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// BillingModelResponse represents a billing model in API responses
type BillingModelResponse struct {
	ID         uuid.UUID                `json:"id"`
	OrgID      uuid.UUID                `json:"org_id"`
	Name       string                   `json:"name"`
	Kind       string                   `json:"kind"`
	Currency   string                   `json:"currency"`
	IsActive   bool                     `json:"is_active"`
	Agent      *billing.AgentConfig     `json:"agent,omitempty"`
	Activities []billing.ActivityConfig `json:"activities,omitempty"`
	Outcomes   []billing.OutcomeConfig  `json:"outcomes,omitempty"`
	Workflow   *billing.WorkflowConfig  `json:"workflow,omitempty"`
	Hybrid     *billing.HybridConfig    `json:"hybrid,omitempty"`
	dto.TimestampResponse
}

func toBillingModelResponse(m *billing.BillingModel) BillingModelResponse {
	return BillingModelResponse{
		ID:         m.ID,
		OrgID:      m.OrgID,
		Name:       m.Name,
		Kind:       m.Kind.String(),
		Currency:   string(m.Currency),
		IsActive:   m.IsActive,
		Agent:      m.Agent,
		Activities: m.Activities,
		Outcomes:   m.Outcomes,
		Workflow:   m.Workflow,
		Hybrid:     m.Hybrid,
		TimestampResponse: dto.TimestampResponse{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

// Create creates a new billing model for the organization
func (h *BillingModelHandler) Create(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var req CreateBillingModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	kind, err := billing.ParseModelKind(req.Kind)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	model, err := h.modelService.CreateModel(c.Request.Context(), appbilling.CreateModelInput{
		OrgID:      orgID,
		Name:       req.Name,
		Kind:       kind,
		Currency:   valueobject.Currency(req.Currency),
		Agent:      req.Agent,
		Activities: req.Activities,
		Outcomes:   req.Outcomes,
		Workflow:   req.Workflow,
		Hybrid:     req.Hybrid,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBillingModelResponse(model))
}

// GetByID returns the organization's billing model by id
func (h *BillingModelHandler) GetByID(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid model ID")
		return
	}
	modelID := uuid.MustParse(uri.ID)

	model, err := h.modelService.GetModel(c.Request.Context(), orgID, modelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillingModelResponse(model))
}

// List returns the organization's billing models with pagination
func (h *BillingModelHandler) List(c *gin.Context) {
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

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}
	if kind := c.Query("kind"); kind != "" {
		filter.Filters["kind"] = kind
	}
	if active := c.Query("is_active"); active != "" {
		filter.Filters["is_active"] = active == "true"
	}

	page, err := h.modelService.ListModels(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]BillingModelResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, toBillingModelResponse(&page.Items[i]))
	}
	h.SuccessWithMeta(c, responses, page.Total, filter.Page, filter.PageSize)
}

// ListActive returns all active billing models for the organization
func (h *BillingModelHandler) ListActive(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	models, err := h.modelService.ListActiveModels(c.Request.Context(), orgID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]BillingModelResponse, 0, len(models))
	for i := range models {
		responses = append(responses, toBillingModelResponse(&models[i]))
	}
	h.Success(c, responses)
}

// SetActive activates or deactivates a billing model
func (h *BillingModelHandler) SetActive(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid model ID")
		return
	}
	modelID := uuid.MustParse(uri.ID)

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	model, err := h.modelService.SetModelActive(c.Request.Context(), orgID, modelID, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillingModelResponse(model))
}

// Delete removes a billing model
func (h *BillingModelHandler) Delete(c *gin.Context) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid model ID")
		return
	}
	modelID := uuid.MustParse(uri.ID)

	if err := h.modelService.DeleteModel(c.Request.Context(), orgID, modelID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers billing model routes
func (h *BillingModelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	models := rg.Group("/billing-models")
	{
		models.POST("", h.Create)
		models.GET("", h.List)
		models.GET("/active", h.ListActive)
		models.GET("/:id", h.GetByID)
		models.PATCH("/:id/active", h.SetActive)
		models.DELETE("/:id", h.Delete)
	}
}
