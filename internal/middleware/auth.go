package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/session"
	"sidequest_portal/pkg/apperrors"
)

// Страницы, на которые уводят guards
const (
	LoginPath          = "/login"
	AdminDashboardPath = "/admin/dashboard"
	ClientHomePath     = "/plans"
)

// HomeFor - куда отправить уже вошедшего пользователя с /login и /signup
func HomeFor(role string) string {
	if models.UserRole(role).IsAdmin() {
		return AdminDashboardPath
	}
	return ClientHomePath
}

// ============================================
// Guards страниц (302)
// ============================================

// RequireSession - без токена на /login
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			redirect(c, LoginPath)
			return
		}
		c.Next()
	}
}

// RequireAdmin - без токена на /login; с токеном, но без админской роли
// сессия уничтожается и тоже на /login
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			redirect(c, LoginPath)
			return
		}
		if !sess.HasAdminRole() {
			logger.CtxWarn(c.Request.Context(), "Non-admin session on admin page, destroying",
				"path", c.Request.URL.Path, "role", sess.GetRole())
			sess.Destroy()
			redirect(c, LoginPath)
			return
		}
		c.Next()
	}
}

// GuestOnly - /login и /signup для вошедших уводят на их главную
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := GetSession(c); sess != nil && sess.IsAuthenticated() {
			redirect(c, HomeFor(sess.GetRole()))
			return
		}
		c.Next()
	}
}

// ============================================
// Guards /api (JSON с redirect)
// ============================================

func RequireSessionAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			apperrors.HandleError(c, apperrors.ErrSessionRequired())
			return
		}
		c.Next()
	}
}

func RequireAdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthenticated() {
			apperrors.HandleError(c, apperrors.ErrSessionRequired())
			return
		}
		if !sess.HasAdminRole() {
			sess.Destroy()
			apperrors.HandleError(c, apperrors.ErrAdminRequired())
			return
		}
		c.Next()
	}
}

// ============================================
// Edge gate
// ============================================

// DefaultEdgeMatcher - пути, которые проверяются до маршрутизации.
// "/x/*" означает все вложенные пути, остальные сравниваются точно.
var DefaultEdgeMatcher = []string{
	"/admin",
	"/admin/*",
	"/redeem",
	"/redeem/*",
	"/profile",
	"/plans",
}

// клиентские страницы, которым нужен токен
var clientPages = map[string]bool{
	"/profile":  true,
	"/plans":    true,
	"/home":     true,
	"/schedule": true,
}

// EdgeGate - та же проверка cookie, что у guards страниц, но для фиксированного
// списка путей и до того, как сработает любой обработчик. Сессию не уничтожает.
func EdgeGate(matcher []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !matchEdge(matcher, path) {
			c.Next()
			return
		}
		if target := edgeRedirect(GetSession(c), path); target != "" {
			redirect(c, target)
			return
		}
		c.Next()
	}
}

func edgeRedirect(sess *session.Session, path string) string {
	authenticated := sess != nil && sess.IsAuthenticated()

	if path == "/login" || path == "/signup" {
		if authenticated {
			return HomeFor(sess.GetRole())
		}
		return ""
	}

	if strings.HasPrefix(path, "/admin") {
		if !authenticated || !sess.HasAdminRole() {
			return LoginPath
		}
	}

	if strings.HasPrefix(path, "/redeem") || clientPages[path] {
		if !authenticated {
			return LoginPath
		}
	}
	return ""
}

func matchEdge(matcher []string, path string) bool {
	for _, m := range matcher {
		if prefix, ok := strings.CutSuffix(m, "/*"); ok {
			if strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == m {
			return true
		}
	}
	return false
}

func redirect(c *gin.Context, target string) {
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
