package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/pkg/apperrors"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(middleware.RequireSessionAPI())
	{
		subscriptions.GET("", h.GetSubscriptions)
		subscriptions.PUT("/current", h.SetCurrent)
		subscriptions.GET("/:id", h.GetSubscription)
		subscriptions.PUT("/:id", h.UpdateSubscription)
		subscriptions.POST("/:id/cancel", h.CancelSubscription)
	}
}

// GetSubscriptions - все подписки пользователя, текущая и суммы кредитов
func (h *SubscriptionHandler) GetSubscriptions(c *gin.Context) {
	sc := h.Scope(c)
	if _, err := h.subscriptionService.FetchUserSubscriptions(c.Request.Context(), sc); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, subscriptionsView(sc.State.Snapshot().Subscriptions))
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sub, err := h.subscriptionService.FetchByID(c.Request.Context(), h.Scope(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, sub)
}

func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	var patch dto.SubscriptionPatch
	if !h.BindAndValidate_JSON(c, &patch) {
		return
	}
	if patch.Empty() {
		h.notifyError(c, "Nothing to update")
		apperrors.HandleError(c, apperrors.NewBadRequestError("Nothing to update"))
		return
	}

	sc := h.Scope(c)
	if _, err := h.subscriptionService.Update(c.Request.Context(), sc, c.Param("id"), &patch); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, subscriptionsView(sc.State.Snapshot().Subscriptions))
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	sc := h.Scope(c)
	if _, err := h.subscriptionService.Cancel(c.Request.Context(), sc, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, subscriptionsView(sc.State.Snapshot().Subscriptions))
}

// SetCurrent - выбор подписки на главной, в backend не ходит
func (h *SubscriptionHandler) SetCurrent(c *gin.Context) {
	var req dto.SetCurrentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sc := h.Scope(c)
	if !h.subscriptionService.SetCurrent(sc, req.ID) {
		h.notifyError(c, "Subscription not found")
		apperrors.HandleError(c, apperrors.NewNotFoundError("subscription", "Subscription not found"))
		return
	}

	h.Respond(c, http.StatusOK, subscriptionsView(sc.State.Snapshot().Subscriptions))
}
