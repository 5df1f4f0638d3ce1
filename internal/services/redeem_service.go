package services

import (
	"context"
	"net/http"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

// Тексты локальных проверок перед списанием
const (
	MsgNeedAvailableCredit = "You need available credits to create a normal redeem request"
	MsgNeedGiftCredit      = "You need gift credits to create a guest redeem request"
	MsgNeedAnyCredit       = "You need credits to create a redeem request"
	MsgSelectRedeemType    = "Please select a redeem type"
)

type RedeemService interface {
	FetchItems(ctx context.Context, sc *Scope) (*store.RedeemState, error)
	LoadMore(ctx context.Context, sc *Scope) (*store.RedeemState, error)
	Create(ctx context.Context, sc *Scope, redeemType models.RedeemType) (*models.RedeemItem, error)
	History(ctx context.Context, sc *Scope) ([]models.RedeemItem, error)
	CheckCredits(credits store.CreditTotals, redeemType models.RedeemType) error
}

type redeemService struct {
	businessID    string
	subscriptions SubscriptionService
}

func NewRedeemService(businessID string, subscriptions SubscriptionService) RedeemService {
	return &redeemService{businessID: businessID, subscriptions: subscriptions}
}

// FetchItems загружает первую страницу заново
func (s *redeemService) FetchItems(ctx context.Context, sc *Scope) (*store.RedeemState, error) {
	return s.fetchPage(ctx, sc, 0)
}

func (s *redeemService) LoadMore(ctx context.Context, sc *Scope) (*store.RedeemState, error) {
	current := sc.State.Snapshot().Redeem
	if !current.HasMore {
		return &current, nil
	}
	return s.fetchPage(ctx, sc, current.Page+1)
}

func (s *redeemService) fetchPage(ctx context.Context, sc *Scope, page int) (*store.RedeemState, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Redeem.Items = st.Redeem.Items.Pending()
		return st
	})

	var items []models.RedeemItem
	err := sc.API.Do(ctx, http.MethodGet, backend.PathClientRedeem, nil, &items,
		backend.WithQuery(backend.Page{Page: page, PerPage: store.RedeemPerPage}))
	if err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Redeem.Items = st.Redeem.Items.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Redeem = store.ReduceRedeemPage(st.Redeem, page, items)
		return st
	})
	result := sc.State.Snapshot().Redeem
	return &result, nil
}

// CheckCredits - проверки в том же порядке, что и на клиентской странице
func (s *redeemService) CheckCredits(credits store.CreditTotals, redeemType models.RedeemType) error {
	switch {
	case redeemType.ButtonNumber() == 0:
		return apperrors.ErrInvalidOperation("redeem", MsgSelectRedeemType).WithDetails(map[string]string{"type": MsgSelectRedeemType})
	case redeemType == models.RedeemTypeNormal && credits.Available <= 0:
		return apperrors.ErrInsufficientCredit(MsgNeedAvailableCredit)
	case redeemType == models.RedeemTypeGuest && credits.Gift <= 0:
		return apperrors.ErrInsufficientCredit(MsgNeedGiftCredit)
	case credits.Available <= 0 && credits.Gift <= 0:
		return apperrors.ErrInsufficientCredit(MsgNeedAnyCredit)
	}
	return nil
}

// Create проверяет кредиты по кэшу подписок и только потом идет в backend.
// После успеха перечитываются и заявки, и подписки (балансы изменились).
func (s *redeemService) Create(ctx context.Context, sc *Scope, redeemType models.RedeemType) (*models.RedeemItem, error) {
	list := sc.State.Snapshot().Subscriptions.List
	if list.Status == store.StatusIdle {
		if _, err := s.subscriptions.FetchUserSubscriptions(ctx, sc); err != nil {
			return nil, err
		}
		list = sc.State.Snapshot().Subscriptions.List
	}

	if err := s.CheckCredits(store.SumCredits(list.Data), redeemType); err != nil {
		appErr, _ := apperrors.AsAppError(err)
		return nil, sc.reject(appErr)
	}

	var item models.RedeemItem
	err := sc.API.Do(ctx, http.MethodPost, backend.PathCreateRedeem, dto.RedeemBody{
		BusinessID:   s.businessID,
		ButtonNumber: redeemType.ButtonNumber(),
	}, &item, backend.WithSuccessToast("Redeem request created successfully!"))
	if err != nil {
		return nil, backend.ToAppError(err)
	}

	_, _ = s.FetchItems(ctx, sc)
	_, _ = s.subscriptions.FetchUserSubscriptions(ctx, sc)
	return &item, nil
}

func (s *redeemService) History(ctx context.Context, sc *Scope) ([]models.RedeemItem, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Redeem.History = st.Redeem.History.Pending()
		return st
	})

	var items []models.RedeemItem
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathClientRedeemHistory, nil, &items); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Redeem.History = st.Redeem.History.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Redeem.History = st.Redeem.History.Fulfilled(items)
		return st
	})
	return items, nil
}
