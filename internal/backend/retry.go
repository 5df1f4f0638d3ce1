package backend

import (
	"errors"
	"net/http"
	"time"
)

// RetryPolicy решает, повторять ли попытку. Чистая функция, без побочных эффектов.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Next вызывается после неудачной попытки с индексом attempt (с нуля).
// Возвращает, нужен ли повтор и сколько ждать перед ним: BaseDelay * 2^attempt.
func (p RetryPolicy) Next(attempt int, method string, err error) (bool, time.Duration) {
	if attempt >= p.MaxRetries || !Retryable(method, err) {
		return false, 0
	}
	return true, p.BaseDelay << attempt
}

// AttemptsLeft - сколько повторов осталось после неудачной попытки attempt
func (p RetryPolicy) AttemptsLeft(attempt int) int {
	if left := p.MaxRetries - attempt; left > 0 {
		return left
	}
	return 0
}

// Retryable - только 5xx и только для идемпотентных методов.
// Отказ circuit breaker не повторяется: запрос не уходил на backend.
func Retryable(method string, err error) bool {
	if !Idempotent(method) {
		return false
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.Status >= 500 && httpErr.Code != CodeUnavailable
}

func Idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
