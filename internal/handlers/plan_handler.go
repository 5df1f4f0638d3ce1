package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
)

type PlanHandler struct {
	*BaseHandler
	planService services.PlanService
}

func NewPlanHandler(base *BaseHandler, planService services.PlanService) *PlanHandler {
	return &PlanHandler{
		BaseHandler: base,
		planService: planService,
	}
}

func (h *PlanHandler) RegisterRoutes(r *gin.RouterGroup) {
	plans := r.Group("/plans")
	plans.Use(middleware.RequireSessionAPI())
	{
		plans.GET("", h.GetPlans)
		plans.GET("/:planId", h.GetPlan)
		plans.POST("/subscribe", h.Subscribe)
	}
}

func (h *PlanHandler) GetPlans(c *gin.Context) {
	catalog, err := h.planService.FetchPlans(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, catalog)
}

// GetPlan - план с его тарифами
func (h *PlanHandler) GetPlan(c *gin.Context) {
	ctx := c.Request.Context()
	sc := h.Scope(c)
	planID := c.Param("planId")

	plan, err := h.planService.PlanByID(ctx, sc, planID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	variations, err := h.planService.VariationsFor(ctx, sc, planID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, gin.H{
		"plan":       plan,
		"variations": variations,
	})
}

// Subscribe - подписка уже привязанной картой. Новая карта идет через /payment/checkout.
func (h *PlanHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	created, err := h.planService.Subscribe(c.Request.Context(), h.Scope(c), dto.SubscribeInput{
		PlanVariationID: req.PlanVariationID,
		CardID:          req.CardID,
		Amount:          req.Amount,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusCreated, created)
}
