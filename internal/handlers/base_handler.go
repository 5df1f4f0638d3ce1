package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/middleware"
	"sidequest_portal/internal/notify"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/validator"
	"sidequest_portal/pkg/apperrors"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{
		validator: v,
	}
}

// Envelope - ответ /api: данные и уведомления, накопленные за запрос
type Envelope struct {
	Data          interface{} `json:"data"`
	Notifications interface{} `json:"notifications"`
}

// ============================================================================
// 2. Scope запроса
// ============================================================================

// Scope извлекает зависимости запроса, собранные ScopeMiddleware.
// Вызывается в каждом хендлере, который обращается к сервисам.
func (h *BaseHandler) Scope(c *gin.Context) *services.Scope {
	sc := middleware.GetScope(c)
	if sc == nil {
		// приложение неверно сконфигурировано
		logger.CtxError(c.Request.Context(), "critical error: scope not found in context", "path", c.Request.URL.Path)
		panic("critical error: ScopeMiddleware is not installed")
	}
	return sc
}

// Respond отдает данные вместе с очередью уведомлений
func (h *BaseHandler) Respond(c *gin.Context, status int, data interface{}) {
	q := middleware.GetNotifications(c)
	if q == nil {
		q = notify.NewQueue()
	}
	c.JSON(status, Envelope{Data: data, Notifications: q})
}

// ============================================================================
// 3. Методы привязки и валидации
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.rejectBinding(c, err, "Invalid request body")
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.rejectBinding(c, err, "Invalid query parameters")
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}
	if vErr, ok := err.(*validator.ValidationError); ok {
		logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
		h.notifyError(c, vErr.First())
		apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		return false
	}

	logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
	apperrors.HandleError(c, apperrors.InternalError(err))
	return false
}

// rejectBinding - ошибки gin binding: правила из тегов binding или битый JSON
func (h *BaseHandler) rejectBinding(c *gin.Context, err error, message string) {
	ctx := c.Request.Context()

	if vErr, ok := h.validator.Translate(err); ok {
		logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
		h.notifyError(c, vErr.First())
		apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		return
	}

	logger.CtxWithError(ctx, "Failed to bind request", err, "path", c.Request.URL.Path)
	h.notifyError(c, message)
	apperrors.HandleError(c, apperrors.NewBadRequestError(message+": "+err.Error()))
}

// ============================================================================
// 4. Обработчики ошибок
// ============================================================================

// HandleServiceError отдает ошибку сервиса. Toast к этому моменту уже в очереди:
// его кладут клиент backend и локальные проверки сервисов.
// Истекшая сессия на странице (не /api) превращается в 302 на /login.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if !apperrors.As(err, &appErr) {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		h.notifyError(c, "Something went wrong. Please try again.")
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	logger.CtxWarn(ctx, "Service error",
		"error", appErr.Message,
		"code", appErr.Code,
		"details", appErr.Details,
		"path", c.Request.URL.Path,
	)
	if appErr.Redirect != "" && !isAPI(c) {
		c.Redirect(http.StatusFound, appErr.Redirect)
		c.Abort()
		return
	}
	apperrors.HandleError(c, appErr)
}

func (h *BaseHandler) notifyError(c *gin.Context, message string) {
	if q := middleware.GetNotifications(c); q != nil && message != "" {
		q.Error(message)
	}
}

func isAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// ============================================================================
// 5. Функции парсинга
// ============================================================================

func ParseParamInt64(c *gin.Context, key string) (int64, error) {
	valueStr := c.Param(key)
	if valueStr == "" {
		return 0, apperrors.NewBadRequestError("Missing required path parameter: " + key)
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequestError("Invalid path parameter: " + key + " is not an integer")
	}
	return value, nil
}

// paramID - обертка над ParseParamInt64, сама отвечает об ошибке
func (h *BaseHandler) paramID(c *gin.Context, key string) (int64, bool) {
	id, err := ParseParamInt64(c, key)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			h.notifyError(c, appErr.Message)
		}
		apperrors.HandleError(c, err)
		return 0, false
	}
	return id, true
}
