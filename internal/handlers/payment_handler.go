package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Идентификаторы Square публичные, виджет грузится до входа
	r.GET("/payment/config", h.GetConfig)

	payment := r.Group("/payment")
	payment.Use(middleware.RequireSessionAPI())
	{
		payment.POST("/checkout", h.Checkout)
	}

	cards := r.Group("/cards")
	cards.Use(middleware.RequireSessionAPI())
	{
		cards.GET("", h.ListCards)
		cards.DELETE("/:cardId", h.RemoveCard)
	}
}

func (h *PaymentHandler) GetConfig(c *gin.Context) {
	cfg, err := h.paymentService.Config()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, cfg)
}

// Checkout - токен карты из виджета: сначала карта, затем подписка
func (h *PaymentHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.paymentService.Checkout(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	h.Respond(c, status, res)
}

func (h *PaymentHandler) ListCards(c *gin.Context) {
	cards, err := h.paymentService.ListCards(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, cards)
}

func (h *PaymentHandler) RemoveCard(c *gin.Context) {
	cards, err := h.paymentService.RemoveCard(c.Request.Context(), h.Scope(c), c.Param("cardId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, cards)
}
