package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/pkg/apperrors"
)

type AdminHandler struct {
	*BaseHandler
	adminService   services.AdminService
	paymentService services.PaymentService
}

func NewAdminHandler(base *BaseHandler, adminService services.AdminService, paymentService services.PaymentService) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    base,
		adminService:   adminService,
		paymentService: paymentService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdminAPI())
	{
		admin.GET("/dashboard", h.GetDashboard)

		users := admin.Group("/users")
		{
			users.GET("", h.GetUsers)
			users.GET("/search", h.SearchUsers)
			users.GET("/:id", h.GetUser)
			users.POST("", h.CreateUser)
			users.PUT("/:id", h.UpdateUser)
		}

		subscriptions := admin.Group("/subscriptions")
		{
			subscriptions.GET("", h.GetSubscriptions)
			subscriptions.PUT("/:id", h.UpdateSubscription)
			subscriptions.POST("/checkout", h.Checkout)
		}

		admin.GET("/members", h.GetMembers)
		admin.GET("/plans", h.GetPlans)
		admin.POST("/cards", h.AddCard)

		redeem := admin.Group("/redeem")
		{
			redeem.GET("", h.GetRedeemRequests)
			redeem.PUT("/:id", h.DecideRedeem)
		}
	}
}

func (h *AdminHandler) GetDashboard(c *gin.Context) {
	view, err := h.adminService.Dashboard(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, view)
}

// --- Пользователи ---

func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.adminService.Users(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	user, err := h.adminService.User(c.Request.Context(), h.Scope(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, user)
}

// SearchUsers - page_number=0 начинает поиск заново, следующие страницы дописываются
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	var q dto.UserSearchQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	users, err := h.adminService.SearchUsers(c.Request.Context(), h.Scope(c), &q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, gin.H{
		"users":       users,
		"page_number": q.PageNumber,
		"has_more":    len(users) >= (q.PageNumber+1)*services.AdminUserPageSize,
	})
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.AdminCreateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	users, err := h.adminService.CreateUser(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusCreated, users)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AdminUpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	users, err := h.adminService.UpdateUser(c.Request.Context(), h.Scope(c), id, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, users)
}

// --- Подписки ---

func (h *AdminHandler) GetSubscriptions(c *gin.Context) {
	subs, err := h.adminService.Subscriptions(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, subs)
}

// UpdateSubscription - подписки чужого бизнеса отклоняются до запроса в backend
func (h *AdminHandler) UpdateSubscription(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	var patch dto.SubscriptionPatch
	if !h.BindAndValidate_JSON(c, &patch) {
		return
	}
	if patch.Empty() {
		h.notifyError(c, "Nothing to update")
		apperrors.HandleError(c, apperrors.NewBadRequestError("Nothing to update"))
		return
	}

	subs, err := h.adminService.UpdateSubscription(c.Request.Context(), h.Scope(c), id, &patch)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, subs)
}

func (h *AdminHandler) Checkout(c *gin.Context) {
	var req dto.AdminCheckoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	res, err := h.paymentService.AdminCheckout(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusCreated, res)
}

func (h *AdminHandler) AddCard(c *gin.Context) {
	var req dto.AdminAddCardRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	card, err := h.paymentService.AdminAddCard(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusCreated, card)
}

func (h *AdminHandler) GetMembers(c *gin.Context) {
	members, err := h.adminService.Members(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, members)
}

func (h *AdminHandler) GetPlans(c *gin.Context) {
	catalog, err := h.adminService.Plans(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, catalog)
}

// --- Списания ---

func (h *AdminHandler) GetRedeemRequests(c *gin.Context) {
	items, err := h.adminService.RedeemRequests(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, items)
}

func (h *AdminHandler) DecideRedeem(c *gin.Context) {
	var req dto.RedeemDecisionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	items, err := h.adminService.DecideRedeem(c.Request.Context(), h.Scope(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, items)
}
