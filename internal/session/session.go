package session

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sidequest_portal/internal/models"
)

// PWADismissedCookie - флаг "баннер установки скрыт", сбрасывается при входе и выходе
const PWADismissedCookie = "pwa-install-dismissed"

// SessionProvider - единственный источник токена и роли для исходящих запросов
type SessionProvider interface {
	CurrentToken() string
	CurrentRole() string
}

// Options - параметры cookie сессии
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	Domain     string
}

// Store создает сессии поверх cookie запроса/ответа
type Store struct {
	opts Options
	now  func() time.Time
}

func NewStore(opts Options) *Store {
	if opts.CookieName == "" {
		opts.CookieName = "side-quest"
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &Store{opts: opts, now: time.Now}
}

func (s *Store) TokenCookie() string { return s.opts.CookieName }
func (s *Store) RoleCookie() string  { return s.opts.CookieName + "_role" }

// Load читает сессию из cookie запроса. Изменения пишутся в w.
func (s *Store) Load(w http.ResponseWriter, r *http.Request) *Session {
	sess := &Session{store: s, w: w}
	if c, err := r.Cookie(s.TokenCookie()); err == nil {
		sess.token = c.Value
	}
	if c, err := r.Cookie(s.RoleCookie()); err == nil {
		sess.role = c.Value
	}
	if sess.token != "" && tokenExpired(sess.token, s.now()) {
		sess.token = ""
	}
	return sess
}

// Session - токен и роль одного браузера
type Session struct {
	store *Store
	w     http.ResponseWriter
	token string
	role  string
}

func (s *Session) SetToken(token string) {
	s.token = token
	s.store.write(s.w, s.store.TokenCookie(), token)
	s.store.expire(s.w, PWADismissedCookie)
}

func (s *Session) GetToken() string { return s.token }

func (s *Session) ClearToken() {
	s.token = ""
	s.store.expire(s.w, s.store.TokenCookie())
}

func (s *Session) SetRole(role string) {
	s.role = role
	s.store.write(s.w, s.store.RoleCookie(), role)
}

func (s *Session) GetRole() string { return s.role }

func (s *Session) ClearRole() {
	s.role = ""
	s.store.expire(s.w, s.store.RoleCookie())
}

func (s *Session) IsAuthenticated() bool {
	return s.token != ""
}

func (s *Session) HasAdminRole() bool {
	return models.UserRole(s.role).IsAdmin()
}

// Destroy удаляет обе cookie и локальные флаги
func (s *Session) Destroy() {
	s.ClearToken()
	s.ClearRole()
	s.store.expire(s.w, PWADismissedCookie)
}

func (s *Session) CurrentToken() string { return s.token }
func (s *Session) CurrentRole() string  { return s.role }

// Fingerprint - стабильный ключ сессии для кэша состояния. Пусто без токена.
func (s *Session) Fingerprint() string {
	return Fingerprint(s.token)
}

func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

func (s *Store) write(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.opts.Domain,
		MaxAge:   int(s.opts.TTL / time.Second),
		Expires:  s.now().Add(s.opts.TTL),
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Store) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   s.opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// tokenExpired - true только для JWT с exp в прошлом. Непрозрачные токены валидны.
func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
