package handler

import (
	appbilling "github.com/agentbill/backend/internal/application/billing"
	"github.com/agentbill/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CalculationHandler handles cost calculation endpoints
type CalculationHandler struct {
	BaseHandler
	calcService *appbilling.CalculationService
}

// NewCalculationHandler creates a new CalculationHandler
func NewCalculationHandler(calcService *appbilling.CalculationService) *CalculationHandler {
	return &CalculationHandler{calcService: calcService}
}

// CalculateCostRequest represents a cost calculation request. Usage keys
// vary by model kind; unknown keys are ignored and missing numeric keys
// resolve to zero.
type CalculateCostRequest struct {
	ModelID string                 `json:"model_id" binding:"required,uuid"`
	Usage   map[string]interface{} `json:"usage" binding:"required"`
}

// Calculate prices the usage against the billing model and writes a cost
// ledger entry
func (h *CalculationHandler) Calculate(c *gin.Context) {
	h.calculate(c, false)
}

// Preview prices the usage without writing a ledger entry
func (h *CalculationHandler) Preview(c *gin.Context) {
	h.calculate(c, true)
}

func (h *CalculationHandler) calculate(c *gin.Context, preview bool) {
	orgID, err := getOrgID(c)
	if err != nil {
		h.Unauthorized(c, "Organization identification required")
		return
	}

	var req CalculateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	modelID := uuid.MustParse(req.ModelID)

	var result *appbilling.CostResultDTO
	if preview {
		result, err = h.calcService.PreviewCost(c.Request.Context(), orgID, modelID, billing.UsageData(req.Usage))
	} else {
		result, err = h.calcService.CalculateCost(c.Request.Context(), orgID, modelID, billing.UsageData(req.Usage))
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers cost calculation routes
func (h *CalculationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	costs := rg.Group("/costs")
	{
		costs.POST("/calculate", h.Calculate)
		costs.POST("/preview", h.Preview)
	}
}
