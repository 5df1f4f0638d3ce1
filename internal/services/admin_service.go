package services

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

// AdminUserPageSize - размер страницы поиска пользователей на стороне backend
const AdminUserPageSize = 5

// codeAccessDenied - так backend отвечает на повторную регистрацию email
const codeAccessDenied = "ERROR_CODE_ACCESS_DENIED"

type AdminService interface {
	// Пользователи
	Users(ctx context.Context, sc *Scope) ([]models.AdminUser, error)
	User(ctx context.Context, sc *Scope, id string) (*models.AdminUser, error)
	SearchUsers(ctx context.Context, sc *Scope, q *dto.UserSearchQuery) ([]models.AdminUser, error)
	CreateUser(ctx context.Context, sc *Scope, req *dto.AdminCreateUserRequest) ([]models.AdminUser, error)
	UpdateUser(ctx context.Context, sc *Scope, id int64, req *dto.AdminUpdateUserRequest) ([]models.AdminUser, error)

	// Подписки
	Subscriptions(ctx context.Context, sc *Scope) ([]models.UserSubscription, error)
	UpdateSubscription(ctx context.Context, sc *Scope, id int64, patch *dto.SubscriptionPatch) ([]models.UserSubscription, error)
	CreateSubscription(ctx context.Context, sc *Scope, userID, planVariationID, cardID string, opts ...backend.RequestOption) (*models.CreatedSubscription, error)
	CreateSubscriptionWithoutCard(ctx context.Context, sc *Scope, userID, planVariationID string, opts ...backend.RequestOption) (*models.CreatedSubscription, error)
	AddCard(ctx context.Context, sc *Scope, userID string, card dto.CardInput, opts ...backend.RequestOption) (*models.Card, error)
	Plans(ctx context.Context, sc *Scope) (*models.PlanCatalog, error)
	Members(ctx context.Context, sc *Scope) ([]dto.MemberView, error)

	// Списания
	RedeemRequests(ctx context.Context, sc *Scope) ([]models.AdminRedeemRequest, error)
	DecideRedeem(ctx context.Context, sc *Scope, id string, req *dto.RedeemDecisionRequest) ([]models.AdminRedeemRequest, error)

	Dashboard(ctx context.Context, sc *Scope) (*dto.DashboardView, error)
	BusinessID() string
}

type adminService struct {
	businessID string
}

func NewAdminService(businessID string) AdminService {
	return &adminService{businessID: businessID}
}

func (s *adminService) BusinessID() string { return s.businessID }

func (s *adminService) biz() backend.RequestOption { return backend.WithBusinessID(s.businessID) }

// ============================================
// Пользователи
// ============================================

func (s *adminService) Users(ctx context.Context, sc *Scope) ([]models.AdminUser, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Admin.Users = st.Admin.Users.Pending()
		return st
	})

	var users []models.AdminUser
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathAdminUsers, nil, &users, s.biz()); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Admin.Users = st.Admin.Users.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Admin.Users = st.Admin.Users.Fulfilled(users)
		return st
	})
	return users, nil
}

func (s *adminService) User(ctx context.Context, sc *Scope, id string) (*models.AdminUser, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Admin.User = st.Admin.User.Pending()
		return st
	})

	var user models.AdminUser
	if err := sc.API.Do(ctx, http.MethodGet, backend.AdminUserPath(id), nil, &user, s.biz()); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Admin.User = st.Admin.User.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Admin.User = st.Admin.User.Fulfilled(&user)
		return st
	})
	return &user, nil
}

// SearchUsers - поиск по email c пагинацией backend. Страница 0 заменяет
// результат, следующие дописываются к нему.
func (s *adminService) SearchUsers(ctx context.Context, sc *Scope, q *dto.UserSearchQuery) ([]models.AdminUser, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Admin.Search = st.Admin.Search.Pending()
		return st
	})

	var users []models.AdminUser
	err := sc.API.Do(ctx, http.MethodGet, backend.PathAdminUsers, nil, &users, s.biz(),
		backend.WithQuery(backend.UserSearch{Email: q.Email, PageNumber: q.PageNumber}))
	if err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Admin.Search = st.Admin.Search.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		if q.PageNumber > 0 {
			merged := append(append([]models.AdminUser(nil), st.Admin.Search.Data...), users...)
			st.Admin.Search = st.Admin.Search.Fulfilled(merged)
			return st
		}
		st.Admin.Search = st.Admin.Search.Fulfilled(users)
		return st
	})
	return sc.State.Snapshot().Admin.Search.Data, nil
}

// CreateUser регистрирует пользователя в бизнесе админа. Токен из ответа
// не сохраняется: сессия админа остается прежней.
func (s *adminService) CreateUser(ctx context.Context, sc *Scope, req *dto.AdminCreateUserRequest) ([]models.AdminUser, error) {
	err := sc.API.Do(ctx, http.MethodPost, backend.PathSignup, dto.SignupBody{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		BusinessID: s.businessID,
	}, nil, s.biz(), backend.WithSuccessToast("User created successfully!"))
	if err != nil {
		var httpErr *backend.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == codeAccessDenied {
			return nil, sc.reject(apperrors.ErrConflict(err, "user",
				"This email is already registered. Please use a different email address."))
		}
		return nil, backend.ToAppError(err)
	}
	return s.Users(ctx, sc)
}

func (s *adminService) UpdateUser(ctx context.Context, sc *Scope, id int64, req *dto.AdminUpdateUserRequest) ([]models.AdminUser, error) {
	err := sc.API.Do(ctx, http.MethodPatch, backend.AdminUserPath(id), dto.AdminUserBody{
		UserID:     id,
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		BusinessID: s.businessID,
	}, nil, s.biz(), backend.WithSuccessToast("User updated successfully!"))
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.Users(ctx, sc)
}

// ============================================
// Подписки
// ============================================

func (s *adminService) Subscriptions(ctx context.Context, sc *Scope) ([]models.UserSubscription, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Admin.Subscriptions = st.Admin.Subscriptions.Pending()
		return st
	})

	var subs []models.UserSubscription
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathAdminAllSubscriptions, nil, &subs, s.biz()); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Admin.Subscriptions = st.Admin.Subscriptions.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Admin.Subscriptions = st.Admin.Subscriptions.Fulfilled(subs)
		return st
	})
	return subs, nil
}

// UpdateSubscription правит только подписки своего бизнеса. Подписка ищется
// в кэше, при пустом кэше список загружается один раз.
func (s *adminService) UpdateSubscription(ctx context.Context, sc *Scope, id int64, patch *dto.SubscriptionPatch) ([]models.UserSubscription, error) {
	cached := sc.State.Snapshot().Admin.Subscriptions
	if cached.Status == store.StatusIdle {
		if _, err := s.Subscriptions(ctx, sc); err != nil {
			return nil, err
		}
		cached = sc.State.Snapshot().Admin.Subscriptions
	}

	var target *models.UserSubscription
	for i := range cached.Data {
		if cached.Data[i].ID == id {
			target = &cached.Data[i]
			break
		}
	}
	if target == nil {
		return nil, sc.reject(apperrors.NewNotFoundError("subscription", "Subscription not found"))
	}
	if target.BusinessID != s.businessID {
		logger.CtxWarn(ctx, "Blocked update of foreign subscription",
			"subscription_id", id, "business_id", target.BusinessID)
		return nil, sc.reject(apperrors.ErrForeignBusiness(target.BusinessID))
	}

	err := sc.API.Do(ctx, http.MethodPut, backend.AdminUpdateSubscriptionPath(id),
		dto.SubscriptionPatchBody{SubscriptionPatch: *patch, BusinessID: s.businessID}, nil,
		s.biz(), backend.WithSuccessToast("Subscription updated successfully!"))
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.Subscriptions(ctx, sc)
}

func (s *adminService) CreateSubscription(ctx context.Context, sc *Scope, userID, planVariationID, cardID string, opts ...backend.RequestOption) (*models.CreatedSubscription, error) {
	return s.createSubscription(ctx, sc, backend.PathAdminCreateSubscription, dto.CreateSubscriptionBody{
		BusinessID:      s.businessID,
		PlanVariationID: planVariationID,
		CardID:          cardID,
		UserID:          userID,
	}, opts)
}

func (s *adminService) CreateSubscriptionWithoutCard(ctx context.Context, sc *Scope, userID, planVariationID string, opts ...backend.RequestOption) (*models.CreatedSubscription, error) {
	return s.createSubscription(ctx, sc, backend.PathAdminCreateSubscriptionNoCard, dto.CreateSubscriptionBody{
		BusinessID:      s.businessID,
		PlanVariationID: planVariationID,
		UserID:          userID,
	}, opts)
}

func (s *adminService) createSubscription(ctx context.Context, sc *Scope, path string, body dto.CreateSubscriptionBody, opts []backend.RequestOption) (*models.CreatedSubscription, error) {
	var created models.CreatedSubscription
	opts = append([]backend.RequestOption{s.biz(), backend.WithSuccessToast("Subscription created successfully!")}, opts...)
	if err := sc.API.Do(ctx, http.MethodPost, path, body, &created, opts...); err != nil {
		return nil, backend.ToAppError(err)
	}
	_, _ = s.Subscriptions(ctx, sc)
	return &created, nil
}

func (s *adminService) AddCard(ctx context.Context, sc *Scope, userID string, card dto.CardInput, opts ...backend.RequestOption) (*models.Card, error) {
	var added models.Card
	opts = append([]backend.RequestOption{s.biz(), backend.WithSuccessToast("Card added successfully!")}, opts...)
	err := sc.API.Do(ctx, http.MethodPost, backend.PathAdminCard,
		dto.NewAddCardBody(card, s.businessID, userID), &added, opts...)
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return &added, nil
}

func (s *adminService) Plans(ctx context.Context, sc *Scope) (*models.PlanCatalog, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Admin.Catalog = st.Admin.Catalog.Pending()
		return st
	})

	var catalog models.PlanCatalog
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathAdminPlans, nil, &catalog, s.biz()); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Admin.Catalog = st.Admin.Catalog.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Admin.Catalog = st.Admin.Catalog.Fulfilled(catalog)
		return st
	})
	return &catalog, nil
}

// Members группирует подписки по пользователям. Editable=false для подписок
// чужого бизнеса: их можно смотреть, но не менять.
func (s *adminService) Members(ctx context.Context, sc *Scope) ([]dto.MemberView, error) {
	users, err := s.Users(ctx, sc)
	if err != nil {
		return nil, err
	}
	subs, err := s.Subscriptions(ctx, sc)
	if err != nil {
		return nil, err
	}

	byUser := make(map[string][]models.UserSubscription, len(users))
	for _, sub := range subs {
		byUser[sub.UserID] = append(byUser[sub.UserID], sub)
	}

	members := make([]dto.MemberView, 0, len(users))
	for _, u := range users {
		own := byUser[strconv.FormatInt(u.ID, 10)]
		editable := true
		for _, sub := range own {
			if sub.BusinessID != s.businessID {
				editable = false
				break
			}
		}
		members = append(members, dto.MemberView{User: u, Subscriptions: own, Editable: editable})
	}
	return members, nil
}

// ============================================
// Списания
// ============================================

func (s *adminService) RedeemRequests(ctx context.Context, sc *Scope) ([]models.AdminRedeemRequest, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Admin.Redeem = st.Admin.Redeem.Pending()
		return st
	})

	var items []models.AdminRedeemRequest
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathAdminRedeem, nil, &items, s.biz()); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Admin.Redeem = st.Admin.Redeem.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Admin.Redeem = st.Admin.Redeem.Fulfilled(items)
		return st
	})
	return items, nil
}

// DecideRedeem переводит заявку из pending в approved или rejected.
// Сам переход выполняет backend, портал только перечитывает список.
func (s *adminService) DecideRedeem(ctx context.Context, sc *Scope, id string, req *dto.RedeemDecisionRequest) ([]models.AdminRedeemRequest, error) {
	toast := "Redemption request approved"
	if req.Status == models.RedeemStatusRejected {
		toast = "Redemption request rejected"
	}

	err := sc.API.Do(ctx, http.MethodPut, backend.AdminUpdateRedeemPath(id), dto.RedeemDecisionBody{
		BusinessID: s.businessID,
		Status:     req.Status,
		UserID:     req.UserID,
	}, nil, s.biz(), backend.WithSuccessToast(toast))
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.RedeemRequests(ctx, sc)
}

// ============================================
// Сводка
// ============================================

// Dashboard собирает счетчики из трех списков. Ошибка одного списка не
// роняет сводку: его счетчики остаются нулевыми, ошибка уже в уведомлениях.
func (s *adminService) Dashboard(ctx context.Context, sc *Scope) (*dto.DashboardView, error) {
	users, usersErr := s.Users(ctx, sc)
	subs, subsErr := s.Subscriptions(ctx, sc)
	redeem, redeemErr := s.RedeemRequests(ctx, sc)

	if usersErr != nil && subsErr != nil && redeemErr != nil {
		return nil, usersErr
	}

	recent := append([]models.AdminUser(nil), users...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt > recent[j].CreatedAt })
	if len(recent) > AdminUserPageSize {
		recent = recent[:AdminUserPageSize]
	}

	counts := store.CountRedeem(redeem)
	return &dto.DashboardView{
		TotalUsers:          len(users),
		TotalSubscriptions:  len(subs),
		ActiveSubscriptions: len(store.ActiveSubscriptions(subs)),
		Redeem: dto.RedeemCountsView{
			Pending:  counts.Pending,
			Approved: counts.Approved,
			Rejected: counts.Rejected,
		},
		RecentUsers: recent,
	}, nil
}
