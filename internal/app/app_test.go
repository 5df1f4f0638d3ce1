package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidequest_portal/internal/config"
	"sidequest_portal/internal/store"
)

// fakeBackend отвечает заранее заданным JSON по пути и запоминает вызовы
type fakeBackend struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	body, ok := f.responses[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setupPortal(t *testing.T, responses map[string]string) (*gin.Engine, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{responses: responses}
	return newPortal(t, fb), fb
}

func newPortal(t *testing.T, api http.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.BusinessID = "biz-test"
	cfg.Backend.AdminBusinessID = "biz-test"
	cfg.Backend.RetryAttempts = 0
	cfg.Session.CookieName = "side-quest"

	return SetupRouter(cfg, Deps{Repository: store.NewMemoryRepository(time.Hour)})
}

func send(router *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// liveCookies - cookie из ответа без удаленных
func liveCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}

func clientCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: "side-quest", Value: "client-token"},
		{Name: "side-quest_role", Value: "client"},
	}
}

type envelope struct {
	Data          json.RawMessage `json:"data"`
	Notifications []struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"notifications"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func hasToast(env envelope, kind, message string) bool {
	for _, n := range env.Notifications {
		if n.Level == kind && n.Message == message {
			return true
		}
	}
	return false
}

func TestPortal_AdminPageWithoutSession(t *testing.T) {
	router, fb := setupPortal(t, nil)

	rec := send(router, http.MethodGet, "/admin/users", "", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Zero(t, fb.count())
}

func TestPortal_AdminLoginReachesDashboard(t *testing.T) {
	router, fb := setupPortal(t, map[string]string{
		"POST /auth/login":                  `{"authToken":"t","role":"admin"}`,
		"GET /admin/users":                  `[]`,
		"GET /admin/all_user_subscription": `[]`,
		"GET /admin/redeem":                 `[]`,
	})

	// 1. Вход админа
	rec := send(router, http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var info struct {
		Authenticated bool   `json:"authenticated"`
		IsAdmin       bool   `json:"is_admin"`
		Redirect      string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &info))
	assert.True(t, info.Authenticated)
	assert.True(t, info.IsAdmin)
	assert.Equal(t, "/admin/dashboard", info.Redirect)

	// 2. С выданными cookie открываем дашборд
	cookies := liveCookies(rec)
	require.Len(t, cookies, 2)

	rec = send(router, http.MethodGet, "/admin/dashboard", "", cookies)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"page":"/admin/dashboard"`)
	assert.True(t, fb.called("GET /admin/users"))
	t.Logf("ADMIN: login -> /admin/dashboard (200)")
}

func TestPortal_RedeemWithoutCreditsBlockedLocally(t *testing.T) {
	router, fb := setupPortal(t, map[string]string{
		"GET /client/subscription": `[{"id":1,"status":"ACTIVE","available_credit":0,"gift_credit":0}]`,
	})

	rec := send(router, http.MethodPost, "/api/redeem", `{"type":"normal"}`, clientCookies())

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.False(t, fb.called("POST /redeem/create"))
	env := decode(t, rec)
	assert.NotEmpty(t, env.Notifications)
	assert.Equal(t, "error", env.Notifications[len(env.Notifications)-1].Level)
}

func TestPortal_SubscribeWithActiveSubscriptionBlocked(t *testing.T) {
	router, fb := setupPortal(t, map[string]string{
		"GET /client/subscription": `[{"id":7,"status":"ACTIVE","available_credit":2}]`,
	})

	rec := send(router, http.MethodPost, "/api/plans/subscribe",
		`{"plan_variation_id":"var-1","card_id":"card-1"}`, clientCookies())

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.False(t, fb.called("POST /subscription/user/create-a-subscription"))
	assert.True(t, hasToast(decode(t, rec), "error",
		"You already have an active subscription. Please cancel your current subscription before subscribing to a new plan."))
}

func TestPortal_BackendUnauthorizedLogsOut(t *testing.T) {
	router := newPortal(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))

	rec := send(router, http.MethodGet, "/profile", "", clientCookies())

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, liveCookies(rec))
}

func TestPortal_HealthAndRoot(t *testing.T) {
	router, _ := setupPortal(t, nil)

	rec := send(router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = send(router, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/home", rec.Header().Get("Location"))
}
