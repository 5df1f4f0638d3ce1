package backend

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"sidequest_portal/pkg/apperrors"
)

// Тексты уведомлений для пользователя
const (
	MsgTimeout        = "Request timeout. Please try again."
	MsgNetwork        = "Network error. Please check your connection."
	MsgDefaultFailure = "API request failed"
	msgRetrying       = "Request failed. Retrying... (%d attempts left)"
)

// NetworkError - ответа не было (DNS, соединение сброшено и т.п.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError - попытка не уложилась в таймаут
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("request timeout after %s", e.After) }

// HTTPError - backend ответил не-2xx (кроме 401)
type HTTPError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend %d %s: %s", e.Status, e.Code, e.Message)
}

// AuthError - backend ответил 401. Сессия к этому моменту уже уничтожена.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return "authentication failed: " + e.Message }

// CodeUnavailable - код HTTPError, когда circuit breaker не пропустил запрос
const CodeUnavailable = string(apperrors.CodeBackendUnavailable)

// UserMessage - текст, который видит пользователь для ошибки err
func UserMessage(err error) string {
	var (
		httpErr    *HTTPError
		timeoutErr *TimeoutError
		netErr     *NetworkError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Message
	case errors.As(err, &timeoutErr):
		return MsgTimeout
	case errors.As(err, &netErr):
		return MsgNetwork
	}
	return MsgDefaultFailure
}

// ToAppError переводит ошибку клиента в AppError для ответа портала
func ToAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	var (
		httpErr    *HTTPError
		authErr    *AuthError
		timeoutErr *TimeoutError
		netErr     *NetworkError
	)
	switch {
	case errors.As(err, &authErr):
		return apperrors.ErrSessionExpired(err)
	case errors.As(err, &httpErr):
		if httpErr.Status == http.StatusServiceUnavailable && httpErr.Code == CodeUnavailable {
			return apperrors.ErrBackendUnavailable(err)
		}
		return apperrors.ErrBackend(err, httpErr.Status, httpErr.Message).
			WithDetails(map[string]string{"backend_code": httpErr.Code})
	case errors.As(err, &timeoutErr):
		return apperrors.ErrBackendTimeout(err)
	case errors.As(err, &netErr):
		return apperrors.ErrNetwork(err)
	}
	return apperrors.InternalError(err)
}
