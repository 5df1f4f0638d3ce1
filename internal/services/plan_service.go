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

type PlanService interface {
	FetchPlans(ctx context.Context, sc *Scope) (*models.PlanCatalog, error)
	PlanByID(ctx context.Context, sc *Scope, planID string) (*models.SubscriptionPlan, error)
	VariationsFor(ctx context.Context, sc *Scope, planID string) ([]models.PlanVariation, error)
	EnsureCanSubscribe(ctx context.Context, sc *Scope) error
	Subscribe(ctx context.Context, sc *Scope, in dto.SubscribeInput, opts ...backend.RequestOption) (*models.CreatedSubscription, error)
}

type planService struct {
	businessID    string
	subscriptions SubscriptionService
}

func NewPlanService(businessID string, subscriptions SubscriptionService) PlanService {
	return &planService{businessID: businessID, subscriptions: subscriptions}
}

func (s *planService) FetchPlans(ctx context.Context, sc *Scope) (*models.PlanCatalog, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Plans.Catalog = st.Plans.Catalog.Pending()
		return st
	})

	var catalog models.PlanCatalog
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathClientPlans, nil, &catalog); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Plans.Catalog = st.Plans.Catalog.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Plans.Catalog = st.Plans.Catalog.Fulfilled(catalog)
		return st
	})
	return &catalog, nil
}

// PlanByID ищет план по object_id в свежем каталоге
func (s *planService) PlanByID(ctx context.Context, sc *Scope, planID string) (*models.SubscriptionPlan, error) {
	catalog, err := s.FetchPlans(ctx, sc)
	if err != nil {
		return nil, err
	}
	plan, ok := catalog.PlanByID(planID)
	if !ok {
		return nil, apperrors.NewNotFoundError("plan", "Plan not found")
	}
	sc.State.Update(func(st store.State) store.State {
		st.Plans.CurrentPlanID = planID
		return st
	})
	return &plan, nil
}

func (s *planService) VariationsFor(ctx context.Context, sc *Scope, planID string) ([]models.PlanVariation, error) {
	catalog, err := s.FetchPlans(ctx, sc)
	if err != nil {
		return nil, err
	}
	return catalog.VariationsFor(planID), nil
}

// EnsureCanSubscribe блокирует оформление, если в кэше уже есть ACTIVE подписка.
// Список подписок запрашивается, только если его еще ни разу не загружали.
func (s *planService) EnsureCanSubscribe(ctx context.Context, sc *Scope) error {
	list := sc.State.Snapshot().Subscriptions.List
	if list.Status == store.StatusIdle {
		if _, err := s.subscriptions.FetchUserSubscriptions(ctx, sc); err != nil {
			return err
		}
		list = sc.State.Snapshot().Subscriptions.List
	}
	if store.HasActiveSubscription(list.Data) {
		return sc.reject(apperrors.ErrActiveSubscriptionExists())
	}
	return nil
}

func (s *planService) Subscribe(ctx context.Context, sc *Scope, in dto.SubscribeInput, opts ...backend.RequestOption) (*models.CreatedSubscription, error) {
	if err := s.EnsureCanSubscribe(ctx, sc); err != nil {
		return nil, err
	}

	var created models.CreatedSubscription
	opts = append([]backend.RequestOption{backend.WithSuccessToast("Successfully subscribed to plan!")}, opts...)
	err := sc.API.Do(ctx, http.MethodPost, backend.PathCreateSubscription, dto.CreateSubscriptionBody{
		BusinessID:      s.businessID,
		PlanVariationID: in.PlanVariationID,
		CardID:          in.CardID,
		Amount:          in.Amount,
	}, &created, opts...)
	if err != nil {
		return nil, backend.ToAppError(err)
	}

	// подписка уже создана: ошибка перечитывания остается в кэше и в уведомлениях
	_, _ = s.subscriptions.FetchUserSubscriptions(ctx, sc)
	return &created, nil
}
