package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/notify"
	"sidequest_portal/internal/services"
	"sidequest_portal/internal/session"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/contextkeys"
)

// Portal - общие для всех запросов зависимости, из которых собирается Scope
type Portal struct {
	Sessions *session.Store
	States   *store.Manager
	Backend  *backend.Client
}

// ScopeMiddleware собирает для запроса сессию, кэш и клиент backend.
// После обработчика кэш сохраняется, а при входе или выходе переезжает или удаляется.
func ScopeMiddleware(p Portal) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sess := p.Sessions.Load(c.Writer, c.Request)
		queue := notify.NewQueue()

		state, err := p.States.Acquire(ctx, sess.Fingerprint())
		if err != nil {
			logger.CtxWarn(ctx, "State cache unavailable, using request-local state", "error", err)
			state = store.NewContainer("", store.NewState())
		}
		before := state.Key()
		if before != "" {
			ctx = logger.WithSession(ctx, before[:8])
			c.Request = c.Request.WithContext(ctx)
		}

		// 401 от backend: cookie и кэш сессии удаляются сразу
		onAuthFailure := func() {
			sess.Destroy()
			if err := p.States.Drop(ctx, before); err != nil {
				logger.CtxWarn(ctx, "Failed to drop session state", "error", err)
			}
		}

		scope := &services.Scope{
			API:     p.Backend.Bind(sess, queue, onAuthFailure),
			State:   state,
			Session: sess,
			Notify:  queue,
		}
		c.Set(contextkeys.SessionKey, sess)
		c.Set(contextkeys.StateKey, state)
		c.Set(contextkeys.NotificationsKey, queue)
		c.Set(contextkeys.ScopeKey, scope)

		c.Next()

		// ответ уже отправлен, отмена запроса не должна мешать сохранению
		finishScope(context.WithoutCancel(ctx), p.States, state, before, sess.Fingerprint())
	}
}

func finishScope(ctx context.Context, states *store.Manager, state *store.Container, before, after string) {
	var err error
	switch {
	case after == before:
		err = states.Release(ctx, state)
	case after == "":
		err = states.Drop(ctx, before)
	default:
		snap := store.ReduceSessionChange(state.Snapshot())
		if before != "" {
			if err := states.Drop(ctx, before); err != nil {
				logger.CtxWarn(ctx, "Failed to drop previous session state", "error", err)
			}
		}
		err = states.Store(ctx, after, snap)
	}
	if err != nil {
		logger.CtxWarn(ctx, "Failed to persist session state", "error", err)
	}
}

// GetScope возвращает Scope текущего запроса. nil, если ScopeMiddleware не подключен.
func GetScope(c *gin.Context) *services.Scope {
	v, ok := c.Get(contextkeys.ScopeKey)
	if !ok {
		return nil
	}
	scope, _ := v.(*services.Scope)
	return scope
}

// GetSession возвращает cookie-сессию текущего запроса
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(contextkeys.SessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// GetNotifications - очередь уведомлений текущего запроса
func GetNotifications(c *gin.Context) *notify.Queue {
	v, ok := c.Get(contextkeys.NotificationsKey)
	if !ok {
		return nil
	}
	q, _ := v.(*notify.Queue)
	return q
}
