package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/pkg/apperrors"
)

func TestLogin_StoresTokenAndRole(t *testing.T) {
	ts := newScope("", "")
	ts.api.on(http.MethodPost, backend.PathLogin, `{"authToken":"t","role":"admin"}`)

	info, err := NewAuthService("biz-1").Login(context.Background(), ts.Scope,
		&dto.LoginRequest{Email: "a@b.c", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "t", ts.session.token)
	assert.Equal(t, "admin", ts.session.role)
	assert.True(t, info.IsAdmin)
	assert.Equal(t, "/admin/dashboard", info.Redirect)
	assert.Equal(t, 1, ts.api.total(), "role came with the response, /auth/me not needed")

	call, ok := ts.api.last(http.MethodPost, backend.PathLogin)
	require.True(t, ok)
	body := call.Body.(dto.LoginBody)
	assert.Equal(t, "biz-1", body.BusinessID)

	snap := ts.State.Snapshot()
	assert.True(t, snap.Auth.Authenticated)
	assert.Equal(t, "admin", snap.Auth.Role)
}

func TestLogin_FetchesRoleWhenMissing(t *testing.T) {
	ts := newScope("", "")
	ts.api.on(http.MethodPost, backend.PathLogin, `{"authToken":"t"}`).
		on(http.MethodGet, backend.PathMe, `{"id":7,"name":"Ann","email":"a@b.c","role":"client"}`)

	info, err := NewAuthService("biz-1").Login(context.Background(), ts.Scope,
		&dto.LoginRequest{Email: "a@b.c", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "client", ts.session.role)
	assert.Equal(t, "/plans", info.Redirect)
	assert.Equal(t, 1, ts.api.count(http.MethodGet, backend.PathMe))
	assert.Equal(t, "Ann", ts.State.Snapshot().Auth.Profile.Data.Name)
}

func TestLogin_ProfileFailureKeepsLogin(t *testing.T) {
	ts := newScope("", "")
	ts.api.on(http.MethodPost, backend.PathLogin, `{"authToken":"t"}`).
		onErr(http.MethodGet, backend.PathMe, &backend.HTTPError{Status: 500, Message: "boom"})

	info, err := NewAuthService("biz-1").Login(context.Background(), ts.Scope,
		&dto.LoginRequest{Email: "a@b.c", Password: "pw"})

	require.NoError(t, err)
	assert.True(t, info.Authenticated)
	assert.Equal(t, "t", ts.session.token)
	assert.Empty(t, ts.session.role)
}

func TestLogin_NoTokenInResponse(t *testing.T) {
	ts := newScope("", "")
	ts.api.on(http.MethodPost, backend.PathLogin, `{}`)

	_, err := NewAuthService("biz-1").Login(context.Background(), ts.Scope,
		&dto.LoginRequest{Email: "a@b.c", Password: "pw"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPCode)
	assert.Empty(t, ts.session.token)
}

func TestLogin_BackendMessagePassedThrough(t *testing.T) {
	ts := newScope("", "")
	ts.api.onErr(http.MethodPost, backend.PathLogin,
		&backend.HTTPError{Status: 403, Message: "Invalid Credentials."})

	_, err := NewAuthService("biz-1").Login(context.Background(), ts.Scope,
		&dto.LoginRequest{Email: "a@b.c", Password: "bad"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid Credentials.", appErr.Message)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPCode)
}

func TestLogout_LocalOnly(t *testing.T) {
	ts := newScope("t", "client")
	ts.withSubscriptions(activeSub(1, 3, 0))

	info := NewAuthService("biz-1").Logout(context.Background(), ts.Scope)

	assert.True(t, ts.session.destroyed)
	assert.False(t, info.Authenticated)
	assert.Equal(t, "/login", info.Redirect)
	assert.Zero(t, ts.api.total())
	assert.Empty(t, ts.State.Snapshot().Subscriptions.List.Data)
}

func TestCheckAuthStatus_NoBackendCall(t *testing.T) {
	ts := newScope("t", "owner")

	info := NewAuthService("biz-1").CheckAuthStatus(ts.Scope)

	assert.True(t, info.IsAdmin)
	assert.Equal(t, "/admin/dashboard", info.Redirect)
	assert.Zero(t, ts.api.total())
}

func TestUpdateProfile_RefetchesProfile(t *testing.T) {
	ts := newScope("t", "client")
	ts.api.on(http.MethodPost, backend.PathUpdateProfile, `{}`).
		on(http.MethodGet, backend.PathMe, `{"id":7,"name":"New","email":"n@b.c","role":"client"}`)

	profile, err := NewAuthService("biz-1").UpdateProfile(context.Background(), ts.Scope,
		&dto.UpdateProfileRequest{Name: "New"})

	require.NoError(t, err)
	assert.Equal(t, "New", profile.Name)
	assert.Equal(t, 1, ts.api.count(http.MethodGet, backend.PathMe))
}
