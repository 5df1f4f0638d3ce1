package services

import (
	"context"
	"net/http"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
)

type SubscriptionService interface {
	FetchUserSubscriptions(ctx context.Context, sc *Scope) ([]models.UserSubscription, error)
	FetchByID(ctx context.Context, sc *Scope, id string) (*models.UserSubscription, error)
	Cancel(ctx context.Context, sc *Scope, id string) ([]models.UserSubscription, error)
	Update(ctx context.Context, sc *Scope, id string, patch *dto.SubscriptionPatch) ([]models.UserSubscription, error)
	SetCurrent(sc *Scope, id int64) bool
}

type subscriptionService struct {
	businessID string
}

func NewSubscriptionService(businessID string) SubscriptionService {
	return &subscriptionService{businessID: businessID}
}

func (s *subscriptionService) FetchUserSubscriptions(ctx context.Context, sc *Scope) ([]models.UserSubscription, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Subscriptions.List = st.Subscriptions.List.Pending()
		return st
	})

	var list []models.UserSubscription
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathClientSubscriptions, nil, &list); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Subscriptions.List = st.Subscriptions.List.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Subscriptions = store.ReduceSubscriptions(st.Subscriptions, list)
		return st
	})
	return list, nil
}

func (s *subscriptionService) FetchByID(ctx context.Context, sc *Scope, id string) (*models.UserSubscription, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Subscriptions.Detail = st.Subscriptions.Detail.Pending()
		return st
	})

	var sub models.UserSubscription
	if err := sc.API.Do(ctx, http.MethodGet, backend.ClientSubscriptionPath(id), nil, &sub); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Subscriptions.Detail = st.Subscriptions.Detail.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Subscriptions = store.ReduceSubscriptionDetail(st.Subscriptions, &sub)
		return st
	})
	return &sub, nil
}

// Cancel отменяет подписку и перечитывает список целиком
func (s *subscriptionService) Cancel(ctx context.Context, sc *Scope, id string) ([]models.UserSubscription, error) {
	err := sc.API.Do(ctx, http.MethodPost, backend.CancelSubscriptionPath(id),
		dto.BusinessBody{BusinessID: s.businessID}, nil,
		backend.WithSuccessToast("Subscription cancelled successfully!"))
	if err != nil {
		return nil, s.rejectList(sc, err)
	}
	return s.FetchUserSubscriptions(ctx, sc)
}

func (s *subscriptionService) Update(ctx context.Context, sc *Scope, id string, patch *dto.SubscriptionPatch) ([]models.UserSubscription, error) {
	err := sc.API.Do(ctx, http.MethodPut, backend.ClientSubscriptionPath(id),
		dto.SubscriptionPatchBody{SubscriptionPatch: *patch, BusinessID: s.businessID}, nil,
		backend.WithSuccessToast("Subscription updated successfully!"))
	if err != nil {
		return nil, s.rejectList(sc, err)
	}
	return s.FetchUserSubscriptions(ctx, sc)
}

// SetCurrent выбирает текущую подписку из уже загруженного списка
func (s *subscriptionService) SetCurrent(sc *Scope, id int64) bool {
	found := false
	sc.State.Update(func(st store.State) store.State {
		for i := range st.Subscriptions.List.Data {
			if st.Subscriptions.List.Data[i].ID == id {
				sub := st.Subscriptions.List.Data[i]
				st.Subscriptions.Current = &sub
				found = true
				break
			}
		}
		return st
	})
	return found
}

func (s *subscriptionService) rejectList(sc *Scope, err error) error {
	msg, appErr := fail(err)
	sc.State.Update(func(st store.State) store.State {
		st.Subscriptions.List = st.Subscriptions.List.Rejected(msg)
		return st
	})
	return appErr
}
