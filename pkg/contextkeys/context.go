package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// Ключи, под которыми middleware кладут значения в gin.Context (c.Set / c.Get)
const (
	// NotificationsKey - очередь уведомлений (*notify.Queue) текущего запроса
	NotificationsKey = "notifications"
	// StateKey - контейнер состояния (*store.Container) текущей сессии
	StateKey = "state"
	// SessionKey - cookie-сессия (*session.Session) текущего запроса
	SessionKey = "session"
	// ScopeKey - *services.Scope, собранный ScopeMiddleware
	ScopeKey = "scope"
)

// RequestIDKey - ключ request ID в context.Context исходящих запросов
const RequestIDKey = contextKey("request_id")
