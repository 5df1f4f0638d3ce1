package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
)

type RedeemHandler struct {
	*BaseHandler
	redeemService       services.RedeemService
	subscriptionService services.SubscriptionService
}

func NewRedeemHandler(base *BaseHandler, redeemService services.RedeemService, subscriptionService services.SubscriptionService) *RedeemHandler {
	return &RedeemHandler{
		BaseHandler:         base,
		redeemService:       redeemService,
		subscriptionService: subscriptionService,
	}
}

func (h *RedeemHandler) RegisterRoutes(r *gin.RouterGroup) {
	redeem := r.Group("/redeem")
	redeem.Use(middleware.RequireSessionAPI())
	{
		redeem.GET("", h.GetItems)
		redeem.GET("/more", h.LoadMore)
		redeem.GET("/history", h.GetHistory)
		redeem.POST("", h.Create)
	}
}

// GetItems - первая страница списаний и кредиты, от которых зависят кнопки
func (h *RedeemHandler) GetItems(c *gin.Context) {
	ctx := c.Request.Context()
	sc := h.Scope(c)

	if _, err := h.redeemService.FetchItems(ctx, sc); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if !sc.State.Snapshot().Subscriptions.List.Loaded() {
		// без кредитов страница остается рабочей, ошибка уже в уведомлениях
		_, _ = h.subscriptionService.FetchUserSubscriptions(ctx, sc)
	}

	h.Respond(c, http.StatusOK, redeemView(sc.State.Snapshot()))
}

func (h *RedeemHandler) LoadMore(c *gin.Context) {
	sc := h.Scope(c)
	if _, err := h.redeemService.LoadMore(c.Request.Context(), sc); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, redeemView(sc.State.Snapshot()))
}

func (h *RedeemHandler) GetHistory(c *gin.Context) {
	items, err := h.redeemService.History(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, items)
}

// Create - списание кредита; без нужных кредитов в backend не уходит
func (h *RedeemHandler) Create(c *gin.Context) {
	var req dto.CreateRedeemRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sc := h.Scope(c)
	item, err := h.redeemService.Create(c.Request.Context(), sc, req.Type)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusCreated, gin.H{
		"item":   item,
		"redeem": redeemView(sc.State.Snapshot()),
	})
}
