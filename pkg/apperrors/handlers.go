package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"sidequest_portal/pkg/contextkeys"
)

// ErrorResponse - стандартный ответ об ошибке.
// Notifications - накопленные за запрос уведомления (toast), если есть.
type ErrorResponse struct {
	Error         *AppError   `json:"error"`
	Redirect      string      `json:"redirect,omitempty"`
	Notifications interface{} `json:"notifications,omitempty"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
		if h.Debug {
			appErr.Details = err.Error()
		}
	}

	if appErr.HTTPCode >= 500 {
		slog.Error("Server error",
			slog.String("code", string(appErr.Code)),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", appErr.Unwrap()))
	}

	resp := ErrorResponse{Error: appErr, Redirect: appErr.Redirect}
	if q, exists := c.Get(contextkeys.NotificationsKey); exists {
		resp.Notifications = q
	}
	c.AbortWithStatusJSON(appErr.HTTPCode, resp)
}

// HandleError - быстрая функция-помощник для Gin.
// Детали неизвестных ошибок отдаются только вне release-режима.
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: gin.Mode() != gin.ReleaseMode}
	handler.HandleGinError(c, err)
}

// AsAppError пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HandleValidationError - для ошибок биндинга Gin
func HandleValidationError(c *gin.Context, err error) {
	HandleError(c, ValidationError(gin.H{"details": err.Error()}))
}
