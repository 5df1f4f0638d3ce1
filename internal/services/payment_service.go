package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"sidequest_portal/internal/backend"
	"sidequest_portal/internal/logger"
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/services/payment"
	"sidequest_portal/internal/store"
	"sidequest_portal/pkg/apperrors"
)

type PaymentService interface {
	Config() (*dto.PaymentConfig, error)
	Checkout(ctx context.Context, sc *Scope, req *dto.CheckoutRequest) (*dto.CheckoutResult, error)
	AdminCheckout(ctx context.Context, sc *Scope, req *dto.AdminCheckoutRequest) (*dto.CheckoutResult, error)
	AdminAddCard(ctx context.Context, sc *Scope, req *dto.AdminAddCardRequest) (*models.Card, error)
	ListCards(ctx context.Context, sc *Scope) ([]models.Card, error)
	RemoveCard(ctx context.Context, sc *Scope, cardID string) ([]models.Card, error)
}

type paymentService struct {
	businessID string
	square     *payment.SquareService
	replay     *payment.ReplayCache
	plans      PlanService
	admin      AdminService
}

func NewPaymentService(businessID string, square *payment.SquareService, replay *payment.ReplayCache, plans PlanService, admin AdminService) PaymentService {
	return &paymentService{
		businessID: businessID,
		square:     square,
		replay:     replay,
		plans:      plans,
		admin:      admin,
	}
}

func (s *paymentService) Config() (*dto.PaymentConfig, error) {
	if !s.square.Configured() {
		return nil, apperrors.New(apperrors.CodeExternalServiceError, "payment",
			"Payment is not configured", http.StatusServiceUnavailable)
	}
	cfg := s.square.WidgetConfig()
	return &cfg, nil
}

// ============================================
// Оформление клиентом
// ============================================

// Checkout: карта (POST /card/add), затем подписка с ее card_id.
// Если карта не добавилась, подписка не создается. Если подписка не создалась,
// добавленная карта удаляется. Повтор с тем же checkout_id отдает первый результат.
func (s *paymentService) Checkout(ctx context.Context, sc *Scope, req *dto.CheckoutRequest) (*dto.CheckoutResult, error) {
	checkoutID := checkoutIDOf(req.CheckoutID)
	res, replayed, err := s.replay.Do(replayKey(sc, "client", checkoutID), func() (*dto.CheckoutResult, error) {
		// проверка до карты: иначе карта осталась бы без подписки
		if err := s.plans.EnsureCanSubscribe(ctx, sc); err != nil {
			return nil, err
		}

		var card models.Card
		err := sc.API.Do(ctx, http.MethodPost, backend.PathCard,
			dto.NewAddCardBody(req.Card, s.businessID, ""), &card,
			backend.WithSuccessToast("Card added successfully!"),
			backend.WithIdempotencyKey(checkoutID+":card"))
		if err != nil {
			return nil, backend.ToAppError(err)
		}

		created, err := s.plans.Subscribe(ctx, sc, dto.SubscribeInput{
			PlanVariationID: req.PlanVariationID,
			CardID:          card.CardID,
			Amount:          req.Amount,
		},
			backend.WithSuccessToast("Subscription created successfully!"),
			backend.WithIdempotencyKey(checkoutID+":subscription"))
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.CodeSessionExpired {
				// токена уже нет, DELETE /card не пройдет. Карта остается у пользователя
				logger.CtxWarn(ctx, "Session expired after card was added, card left without subscription",
					"card_id", card.CardID, "checkout_id", checkoutID)
				return nil, err
			}
			s.compensateCard(ctx, sc, card.CardID)
			return nil, err
		}

		return &dto.CheckoutResult{
			CheckoutID:     checkoutID,
			CardID:         card.CardID,
			SubscriptionID: created.ID,
			Status:         created.Status,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		logger.CtxInfo(ctx, "Checkout replayed", "checkout_id", checkoutID)
	}
	return res, nil
}

// compensateCard удаляет карту, оставшуюся без подписки. Ошибка только логируется.
func (s *paymentService) compensateCard(ctx context.Context, sc *Scope, cardID string) {
	if cardID == "" {
		return
	}
	if err := sc.API.Do(ctx, http.MethodDelete, backend.CardPath(cardID), nil, nil); err != nil {
		logger.CtxError(ctx, "Failed to remove orphaned card", "card_id", cardID, "error", err)
		return
	}
	logger.CtxInfo(ctx, "Orphaned card removed", "card_id", cardID)
}

// ============================================
// Оформление админом
// ============================================

// AdminCheckout - то же для пользователя из админки. Удаления карты
// у админского API нет, повторы гасятся ключами идемпотентности.
func (s *paymentService) AdminCheckout(ctx context.Context, sc *Scope, req *dto.AdminCheckoutRequest) (*dto.CheckoutResult, error) {
	checkoutID := checkoutIDOf(req.CheckoutID)
	res, _, err := s.replay.Do(replayKey(sc, "admin", checkoutID), func() (*dto.CheckoutResult, error) {
		subKey := backend.WithIdempotencyKey(checkoutID + ":subscription")

		if req.WithoutCard {
			created, err := s.admin.CreateSubscriptionWithoutCard(ctx, sc, req.UserID, req.PlanVariationID, subKey)
			if err != nil {
				return nil, err
			}
			return &dto.CheckoutResult{CheckoutID: checkoutID, SubscriptionID: created.ID, Status: created.Status}, nil
		}

		if req.Card == nil {
			return nil, sc.reject(apperrors.ErrInvalidOperation("payment", "Card details are required"))
		}
		card, err := s.admin.AddCard(ctx, sc, req.UserID, *req.Card,
			backend.WithIdempotencyKey(checkoutID+":card"))
		if err != nil {
			return nil, err
		}
		created, err := s.admin.CreateSubscription(ctx, sc, req.UserID, req.PlanVariationID, card.CardID, subKey)
		if err != nil {
			logger.CtxWarn(ctx, "Card added but subscription failed", "card_id", card.CardID, "user_id", req.UserID)
			return nil, err
		}
		return &dto.CheckoutResult{
			CheckoutID:     checkoutID,
			CardID:         card.CardID,
			SubscriptionID: created.ID,
			Status:         created.Status,
		}, nil
	})
	return res, err
}

func (s *paymentService) AdminAddCard(ctx context.Context, sc *Scope, req *dto.AdminAddCardRequest) (*models.Card, error) {
	return s.admin.AddCard(ctx, sc, req.UserID, req.Card)
}

// ============================================
// Карты
// ============================================

func (s *paymentService) ListCards(ctx context.Context, sc *Scope) ([]models.Card, error) {
	sc.State.Update(func(st store.State) store.State {
		st.Cards.List = st.Cards.List.Pending()
		return st
	})

	var cards []models.Card
	if err := sc.API.Do(ctx, http.MethodGet, backend.PathCard, nil, &cards); err != nil {
		msg, appErr := fail(err)
		sc.State.Update(func(st store.State) store.State {
			st.Cards.List = st.Cards.List.Rejected(msg)
			return st
		})
		return nil, appErr
	}

	sc.State.Update(func(st store.State) store.State {
		st.Cards.List = st.Cards.List.Fulfilled(cards)
		return st
	})
	return cards, nil
}

func (s *paymentService) RemoveCard(ctx context.Context, sc *Scope, cardID string) ([]models.Card, error) {
	err := sc.API.Do(ctx, http.MethodDelete, backend.CardPath(cardID), nil, nil,
		backend.WithSuccessToast("Card removed successfully!"))
	if err != nil {
		return nil, backend.ToAppError(err)
	}
	return s.ListCards(ctx, sc)
}

func checkoutIDOf(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// replayKey привязывает checkout_id к сессии: чужой id не отдаст чужой результат
func replayKey(sc *Scope, flow, checkoutID string) string {
	return flow + ":" + sc.State.Key() + ":" + checkoutID
}
