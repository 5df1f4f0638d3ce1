package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	sessionKey   contextKey = "session"
)

// поля, которые FromContext переносит из context в каждую запись
var contextFields = []contextKey{requestIDKey, sessionKey}

// WithRequestID - id запроса, тот же уходит в backend как X-Request-ID
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithSession добавляет короткий отпечаток сессии (не сам токен)
func WithSession(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, sessionKey, fingerprint)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext - глобальный логгер с request_id и session запроса
func FromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	var fields []any
	for _, key := range contextFields {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, string(key), v)
		}
	}
	if len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

// ============================================
// Логирование с context
// ============================================

func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Error(msg, args...)
}

// CtxWithError - error первым полем
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	FromContext(ctx).Error(msg, append([]any{"error", err.Error()}, args...)...)
}
