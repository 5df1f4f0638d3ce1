package services

import (
	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/notify"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

// SessionWriter - операции с cookie-сессией, нужные сервисам
type SessionWriter interface {
	SetToken(token string)
	SetRole(role string)
	GetRole() string
	IsAuthenticated() bool
	HasAdminRole() bool
	Destroy()
}

// Scope - зависимости одного входящего запроса: клиент backend с привязанной
// сессией, кэш сессии и очередь уведомлений.
type Scope struct {
	API     backend.Doer
	State   *store.Container
	Session SessionWriter
	Notify  notify.Notifier
}

// fail переводит ошибку backend в AppError. Сообщение для кэша берется то же,
// что увидел пользователь.
func fail(err error) (string, *apperrors.AppError) {
	return backend.UserMessage(err), backend.ToAppError(err)
}

// reject показывает локальную ошибку без обращения к backend
func (s *Scope) reject(appErr *apperrors.AppError) *apperrors.AppError {
	if s.Notify != nil {
		s.Notify.Error(appErr.Message)
	}
	return appErr
}
