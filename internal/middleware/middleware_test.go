package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/session"
	"sidequest_portal/internal/store"
)

type harness struct {
	router   *gin.Engine
	repo     *store.MemoryRepository
	states   *store.Manager
	sessions *session.Store
	calls    *atomic.Int32
}

func newHarness(t *testing.T, status int, body string) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	calls := &atomic.Int32{}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(api.Close)

	repo := store.NewMemoryRepository(time.Hour)
	h := &harness{
		router:   gin.New(),
		repo:     repo,
		states:   store.NewManager(repo),
		sessions: session.NewStore(session.Options{CookieName: "side-quest"}),
		calls:    calls,
	}
	client := backend.New(backend.Options{BaseURL: api.URL, BusinessID: "biz-1"})
	h.router.Use(ScopeMiddleware(Portal{Sessions: h.sessions, States: h.states, Backend: client}))
	h.router.Use(EdgeGate(DefaultEdgeMatcher))
	return h
}

func (h *harness) do(method, path, token, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "side-quest", Value: token})
	}
	if role != "" {
		req.AddCookie(&http.Cookie{Name: "side-quest_role", Value: role})
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func expired(rec *httptest.ResponseRecorder, name string) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestEdgeGate_UnauthenticatedAdminNeverReachesBackend(t *testing.T) {
	h := newHarness(t, http.StatusOK, `[]`)
	h.router.GET("/admin/users", RequireAdmin(), func(c *gin.Context) {
		_ = GetScope(c).API.Do(c.Request.Context(), http.MethodGet, backend.PathAdminUsers, nil, nil)
		c.Status(http.StatusOK)
	})

	rec := h.do(http.MethodGet, "/admin/users", "", "")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.Zero(t, h.calls.Load())
}

func TestEdgeGate_Rules(t *testing.T) {
	h := newHarness(t, http.StatusOK, `{}`)
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	for _, p := range []string{"/admin", "/admin/dashboard", "/redeem", "/redeem/history", "/profile", "/plans", "/home", "/login"} {
		h.router.GET(p, ok)
	}

	cases := []struct {
		path, token, role string
		want              string
	}{
		{"/admin", "", "", LoginPath},
		{"/admin/dashboard", "t", "client", LoginPath},
		{"/admin/dashboard", "t", "owner", ""},
		{"/redeem/history", "", "", LoginPath},
		{"/profile", "t", "", ""},
		{"/plans", "", "", LoginPath},
		// вне matcher: проверяет guard страницы, не edge
		{"/home", "", "", ""},
		{"/login", "t", "admin", ""},
	}
	for _, tc := range cases {
		t.Run(tc.path+"/"+tc.role, func(t *testing.T) {
			rec := h.do(http.MethodGet, tc.path, tc.token, tc.role)
			if tc.want == "" {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tc.want, rec.Header().Get("Location"))
			assert.False(t, expired(rec, "side-quest"), "edge gate keeps cookies")
		})
	}
}

func TestMatchEdge(t *testing.T) {
	assert.True(t, matchEdge(DefaultEdgeMatcher, "/admin"))
	assert.True(t, matchEdge(DefaultEdgeMatcher, "/admin/users/5"))
	assert.False(t, matchEdge(DefaultEdgeMatcher, "/administrator"))
	assert.False(t, matchEdge(DefaultEdgeMatcher, "/plans/gold"))
	assert.False(t, matchEdge(DefaultEdgeMatcher, "/schedule"))
}

func TestRequireAdmin_NonAdminSessionDestroyed(t *testing.T) {
	h := newHarness(t, http.StatusOK, `{}`)
	h.router.GET("/admin-area", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := h.do(http.MethodGet, "/admin-area", "t", "client")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	assert.True(t, expired(rec, "side-quest"))
	assert.True(t, expired(rec, "side-quest_role"))
}

func TestGuestOnly_RedirectsByRole(t *testing.T) {
	h := newHarness(t, http.StatusOK, `{}`)
	h.router.GET("/login", GuestOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, AdminDashboardPath, h.do(http.MethodGet, "/login", "t", "super_admin").Header().Get("Location"))
	assert.Equal(t, ClientHomePath, h.do(http.MethodGet, "/login", "t", "client").Header().Get("Location"))
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/login", "", "").Code)
}

func TestRequireAdminAPI_JSON(t *testing.T) {
	h := newHarness(t, http.StatusOK, `{}`)
	h.router.GET("/api/admin/users", RequireAdminAPI(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := h.do(http.MethodGet, "/api/admin/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)

	rec = h.do(http.MethodGet, "/api/admin/users", "t", "client")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, expired(rec, "side-quest"))
}

func TestScope_BackendUnauthorizedDropsSession(t *testing.T) {
	h := newHarness(t, http.StatusUnauthorized, `{"message":"Token expired"}`)
	ctx := context.Background()
	key := session.Fingerprint("t")
	require.NoError(t, h.repo.Save(ctx, key, store.ReduceLogin(store.NewState(), "client")))

	h.router.GET("/api/me", func(c *gin.Context) {
		err := GetScope(c).API.Do(c.Request.Context(), http.MethodGet, backend.PathMe, nil, nil)
		assert.Error(t, err)
		c.Status(http.StatusUnauthorized)
	})

	rec := h.do(http.MethodGet, "/api/me", "t", "client")

	assert.True(t, expired(rec, "side-quest"))
	_, found, err := h.repo.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestScope_LoginMovesStateToNewSession(t *testing.T) {
	h := newHarness(t, http.StatusOK, `{}`)
	h.router.POST("/api/auth/login", func(c *gin.Context) {
		sc := GetScope(c)
		sc.Session.SetToken("fresh")
		sc.Session.SetRole("admin")
		sc.State.Update(func(s store.State) store.State { return store.ReduceLogin(s, "admin") })
		c.Status(http.StatusOK)
	})

	h.do(http.MethodPost, "/api/auth/login", "", "")

	s, found, err := h.repo.Load(context.Background(), session.Fingerprint("fresh"))
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, s.Auth.Authenticated)
	assert.Equal(t, "admin", s.Auth.Role)
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggingMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}
