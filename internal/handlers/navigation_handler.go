package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
)

type NavigationHandler struct {
	*BaseHandler
	navigationService services.NavigationService
}

func NewNavigationHandler(base *BaseHandler, navigationService services.NavigationService) *NavigationHandler {
	return &NavigationHandler{
		BaseHandler:       base,
		navigationService: navigationService,
	}
}

// Навигация доступна и без входа: sidebar есть и на /login
func (h *NavigationHandler) RegisterRoutes(r *gin.RouterGroup) {
	nav := r.Group("/navigation")
	{
		nav.GET("", h.GetNavigation)
		nav.POST("", h.Apply)
	}
}

func (h *NavigationHandler) GetNavigation(c *gin.Context) {
	h.Respond(c, http.StatusOK, h.navigationService.Current(h.Scope(c)))
}

func (h *NavigationHandler) Apply(c *gin.Context) {
	var req dto.NavigationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	h.Respond(c, http.StatusOK, h.navigationService.Apply(h.Scope(c), &req))
}
