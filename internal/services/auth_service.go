package services

import (
	"context"
	"net/http"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

type AuthService interface {
	Login(ctx context.Context, sc *Scope, req *dto.LoginRequest) (*dto.SessionInfo, error)
	Signup(ctx context.Context, sc *Scope, req *dto.SignupRequest) (*dto.SessionInfo, error)
	Logout(ctx context.Context, sc *Scope) *dto.SessionInfo
	FetchProfile(ctx context.Context, sc *Scope) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, sc *Scope, req *dto.UpdateProfileRequest) (*models.UserProfile, error)
	CheckAuthStatus(sc *Scope) *dto.SessionInfo
}

type authService struct {
	businessID string
}

func NewAuthService(businessID string) AuthService {
	return &authService{businessID: businessID}
}

// ============================================
// Вход и регистрация
// ============================================

func (s *authService) Login(ctx context.Context, sc *Scope, req *dto.LoginRequest) (*dto.SessionInfo, error) {
	var resp dto.AuthResponse
	err := sc.API.Do(ctx, http.MethodPost, backend.PathLogin, dto.LoginBody{
		Email:      req.Email,
		Password:   req.Password,
		BusinessID: s.businessID,
	}, &resp)
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.establish(ctx, sc, &resp)
}

func (s *authService) Signup(ctx context.Context, sc *Scope, req *dto.SignupRequest) (*dto.SessionInfo, error) {
	var resp dto.AuthResponse
	err := sc.API.Do(ctx, http.MethodPost, backend.PathSignup, dto.SignupBody{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		BusinessID: s.businessID,
	}, &resp, backend.WithSuccessToast("Account created successfully!"))
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.establish(ctx, sc, &resp)
}

// establish сохраняет токен и роль. Если роли в ответе нет, спрашивает /auth/me.
func (s *authService) establish(ctx context.Context, sc *Scope, resp *dto.AuthResponse) (*dto.SessionInfo, error) {
	if resp.AuthToken == "" {
		return nil, apperrors.New(apperrors.CodeBackendError, "auth", "Login response has no token", http.StatusBadGateway)
	}
	sc.Session.SetToken(resp.AuthToken)

	role := resp.Role
	if role == "" {
		profile, err := s.FetchProfile(ctx, sc)
		if err != nil {
			// токен уже выдан, вход не отменяем
			logger.CtxWarn(ctx, "Failed to resolve role after login", "error", err)
		} else {
			role = profile.Role
		}
	}
	if role != "" {
		sc.Session.SetRole(role)
	}

	sc.State.Update(func(st store.State) store.State { return store.ReduceLogin(st, role) })
	logger.CtxInfo(ctx, "User logged in", "role", role)
	return sessionInfo(sc), nil
}

func (s *authService) Logout(ctx context.Context, sc *Scope) *dto.SessionInfo {
	// У backend нет logout, чистим только у себя
	sc.Session.Destroy()
	sc.State.Update(store.ReduceLogout)
	logger.CtxInfo(ctx, "User logged out")
	return &dto.SessionInfo{Authenticated: false, Redirect: "/login"}
}

func (s *authService) CheckAuthStatus(sc *Scope) *dto.SessionInfo {
	return sessionInfo(sc)
}

// ============================================
// Профиль
// ============================================

func (s *authService) FetchProfile(ctx context.Context, sc *Scope) (*models.UserProfile, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Auth.Profile = st.Auth.Profile.Pending()
		return st
	})

	var profile models.UserProfile
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathMe, nil, &profile); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Auth.Profile = st.Auth.Profile.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Auth.Profile = st.Auth.Profile.Fulfilled(&profile)
		return st
	})
	return &profile, nil
}

func (s *authService) UpdateProfile(ctx context.Context, sc *Scope, req *dto.UpdateProfileRequest) (*models.UserProfile, error) {
	err := sc.API.Do(ctx, http.MethodPost, backend.PathUpdateProfile, dto.UpdateProfileBody{
		Name:       req.Name,
		Email:      req.Email,
		BusinessID: s.businessID,
	}, nil, backend.WithSuccessToast("Profile updated successfully!"))
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.FetchProfile(ctx, sc)
}

func sessionInfo(sc *Scope) *dto.SessionInfo {
	info := &dto.SessionInfo{
		Authenticated: sc.Session.IsAuthenticated(),
		Role:          sc.Session.GetRole(),
		IsAdmin:       sc.Session.HasAdminRole(),
	}
	switch {
	case !info.Authenticated:
		info.Redirect = "/login"
	case info.IsAdmin:
		info.Redirect = "/admin/dashboard"
	default:
		info.Redirect = "/plans"
	}
	return info
}
