package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/services/dto"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/signup", h.Signup)
		auth.POST("/logout", h.Logout)
		auth.GET("/status", h.Status)
	}

	profile := r.Group("/profile")
	profile.Use(middleware.RequireSessionAPI())
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	info, err := h.authService.Login(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusOK, info)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	info, err := h.authService.Signup(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.Respond(c, http.StatusCreated, info)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Respond(c, http.StatusOK, h.authService.Logout(c.Request.Context(), h.Scope(c)))
}

// Status - состояние сессии по cookie, без обращения к backend
func (h *AuthHandler) Status(c *gin.Context) {
	h.Respond(c, http.StatusOK, h.authService.CheckAuthStatus(h.Scope(c)))
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, err := h.authService.FetchProfile(c.Request.Context(), h.Scope(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, profile)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), h.Scope(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Respond(c, http.StatusOK, profile)
}
