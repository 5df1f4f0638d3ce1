package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

type AppInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PageView - модель страницы. Данные берутся из кэша сессии, поэтому при
// ошибке backend страница отдается с прежними данными и toast с ошибкой.
type PageView struct {
	Page          string                `json:"page"`
	App           AppInfo               `json:"app"`
	Session       interface{}           `json:"session"`
	Navigation    store.NavigationState `json:"navigation"`
	Data          interface{}           `json:"data,omitempty"`
	Notifications interface{}           `json:"notifications"`
}

type loader func(ctx context.Context, sc *services.Scope) (interface{}, error)

type PageHandler struct {
	*BaseHandler
	app      AppInfo
	services *services.ServiceContainer
}

func NewPageHandler(base *BaseHandler, app AppInfo, svc *services.ServiceContainer) *PageHandler {
	return &PageHandler{
		BaseHandler: base,
		app:         app,
		services:    svc,
	}
}

func (h *PageHandler) RegisterRoutes(r *gin.Engine) {
	guest := r.Group("")
	guest.Use(middleware.GuestOnly())
	{
		guest.GET("/login", h.static("/login"))
		guest.GET("/signup", h.static("/signup"))
	}

	client := r.Group("")
	client.Use(middleware.RequireSession())
	{
		client.GET("/home", h.render("/home", h.loadHome))
		client.GET("/plans", h.render("/plans", h.loadPlans))
		client.GET("/redeem", h.render("/redeem", h.loadRedeem))
		client.GET("/schedule", h.static("/schedule"))
		client.GET("/profile", h.render("/profile", h.loadProfile))
	}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusFound, middleware.AdminDashboardPath)
		})
		admin.GET("/dashboard", h.render("/admin/dashboard", h.loadDashboard))
		admin.GET("/users", h.render("/admin/users", h.loadUsers))
		admin.GET("/members", h.render("/admin/members", h.loadMembers))
		admin.GET("/redeem", h.render("/admin/redeem", h.loadAdminRedeem))
		admin.GET("/profile", h.render("/admin/profile", h.loadAdminProfile))
	}
}

func (h *PageHandler) static(page string) gin.HandlerFunc {
	return h.render(page, nil)
}

func (h *PageHandler) render(page string, load loader) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := h.Scope(c)
		h.services.NavigationService.Visit(sc, page)

		var data interface{}
		if load != nil {
			var err error
			data, err = load(c.Request.Context(), sc)
			if sessionLost(err) {
				h.HandleServiceError(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, PageView{
			Page:          page,
			App:           h.app,
			Session:       h.services.AuthService.CheckAuthStatus(sc),
			Navigation:    h.services.NavigationService.Current(sc),
			Data:          data,
			Notifications: middleware.GetNotifications(c),
		})
	}
}

// sessionLost - backend отверг токен, страницу показывать нельзя
func sessionLost(err error) bool {
	appErr, ok := apperrors.AsAppError(err)
	return ok && appErr.Redirect != ""
}

// firstLost возвращает ошибку потери сессии среди errs, остальные уже показаны toast
func firstLost(errs ...error) error {
	for _, err := range errs {
		if sessionLost(err) {
			return err
		}
	}
	return nil
}

// ============================================
// Клиентские страницы
// ============================================

func (h *PageHandler) loadHome(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, err := h.services.SubscriptionService.FetchUserSubscriptions(ctx, sc)
	return gin.H{
		"subscriptions": subscriptionsView(sc.State.Snapshot().Subscriptions),
	}, err
}

func (h *PageHandler) loadPlans(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, plansErr := h.services.PlanService.FetchPlans(ctx, sc)
	_, subsErr := h.services.SubscriptionService.FetchUserSubscriptions(ctx, sc)

	snap := sc.State.Snapshot()
	view := gin.H{
		"catalog":          snap.Plans.Catalog,
		"subscriptions":    subscriptionsView(snap.Subscriptions),
		"can_subscribe":    !store.HasActiveSubscription(snap.Subscriptions.List.Data),
		"payment":          nil,
		"payment_disabled": true,
	}
	if cfg, err := h.services.PaymentService.Config(); err == nil {
		view["payment"] = cfg
		view["payment_disabled"] = false
	}
	return view, firstLost(plansErr, subsErr)
}

func (h *PageHandler) loadRedeem(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, itemsErr := h.services.RedeemService.FetchItems(ctx, sc)
	_, subsErr := h.services.SubscriptionService.FetchUserSubscriptions(ctx, sc)
	return redeemView(sc.State.Snapshot()), firstLost(itemsErr, subsErr)
}

func (h *PageHandler) loadProfile(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, profileErr := h.services.AuthService.FetchProfile(ctx, sc)
	_, subsErr := h.services.SubscriptionService.FetchUserSubscriptions(ctx, sc)

	snap := sc.State.Snapshot()
	return gin.H{
		"profile":       snap.Auth.Profile,
		"subscriptions": subscriptionsView(snap.Subscriptions),
	}, firstLost(profileErr, subsErr)
}

// ============================================
// Админские страницы
// ============================================

func (h *PageHandler) loadDashboard(ctx context.Context, sc *services.Scope) (interface{}, error) {
	view, err := h.services.AdminService.Dashboard(ctx, sc)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (h *PageHandler) loadUsers(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, err := h.services.AdminService.Users(ctx, sc)
	snap := sc.State.Snapshot().Admin
	return gin.H{"users": snap.Users, "search": snap.Search}, err
}

func (h *PageHandler) loadMembers(ctx context.Context, sc *services.Scope) (interface{}, error) {
	members, err := h.services.AdminService.Members(ctx, sc)
	if err != nil {
		return nil, err
	}
	return gin.H{"members": members}, nil
}

func (h *PageHandler) loadAdminRedeem(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, err := h.services.AdminService.RedeemRequests(ctx, sc)
	items := sc.State.Snapshot().Admin.Redeem
	return gin.H{
		"requests": items,
		"counts":   store.CountRedeem(items.Data),
	}, err
}

func (h *PageHandler) loadAdminProfile(ctx context.Context, sc *services.Scope) (interface{}, error) {
	_, err := h.services.AuthService.FetchProfile(ctx, sc)
	return gin.H{"profile": sc.State.Snapshot().Auth.Profile}, err
}
