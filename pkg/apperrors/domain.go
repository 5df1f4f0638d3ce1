package apperrors

import (
	"net/http"
)

/*
Фабрики доменных ошибок портала.
Сообщения этих ошибок показываются пользователю как есть.
*/

// =========================================================================
// Сессия и доступ
// =========================================================================

// ErrSessionRequired - нет токена сессии (401, редирект на /login)
func ErrSessionRequired() *AppError {
	return New(CodeUnauthorized, "session", "Authentication required", http.StatusUnauthorized).
		WithRedirect("/login")
}

// ErrSessionExpired - backend отверг токен, сессия уже уничтожена
func ErrSessionExpired(err error) *AppError {
	return Wrap(err, CodeSessionExpired, "session", "Session expired", http.StatusUnauthorized).
		WithRedirect("/login")
}

// ErrAdminRequired - роль не админская (403, сессия уничтожается вызывающим)
func ErrAdminRequired() *AppError {
	return New(CodeForbidden, "session", "Admin access required", http.StatusForbidden).
		WithRedirect("/login")
}

// =========================================================================
// Backend API
// =========================================================================

// ErrBackend - backend ответил не-2xx. Сообщение backend отдается как есть.
func ErrBackend(err error, status int, message string) *AppError {
	httpCode := status
	if httpCode < 400 || httpCode > 599 {
		httpCode = http.StatusBadGateway
	}
	return Wrap(err, CodeBackendError, "backend", message, httpCode)
}

func ErrBackendTimeout(err error) *AppError {
	return Wrap(err, CodeBackendTimeout, "backend", "Request timeout", http.StatusGatewayTimeout)
}

func ErrNetwork(err error) *AppError {
	return Wrap(err, CodeNetworkError, "backend", "Network error", http.StatusBadGateway)
}

// ErrBackendUnavailable - circuit breaker открыт, запрос не отправлялся
func ErrBackendUnavailable(err error) *AppError {
	return Wrap(err, CodeBackendUnavailable, "backend", "Backend temporarily unavailable", http.StatusServiceUnavailable)
}

// =========================================================================
// Бизнес-правила
// =========================================================================

func ErrInsufficientCredit(message string) *AppError {
	return New(CodeInsufficientCredit, "redeem", message, http.StatusUnprocessableEntity)
}

func ErrActiveSubscriptionExists() *AppError {
	return New(CodeActiveSubscriptionExists, "subscription",
		"You already have an active subscription. Please cancel your current subscription before subscribing to a new plan.",
		http.StatusConflict)
}

// ErrForeignBusiness - подписка принадлежит другому business_id
func ErrForeignBusiness(businessID string) *AppError {
	return New(CodeForeignBusiness, "subscription",
		"You can only edit subscriptions from your own business.",
		http.StatusForbidden).WithDetails(map[string]string{"business_id": businessID})
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}
