package dto

import "sidequest_portal/internal/models"

// SubscriptionPatch - частичное изменение подписки (клиент и админ).
// Пустые поля не отправляются.
type SubscriptionPatch struct {
	Status          *models.SubscriptionStatus `json:"status,omitempty" validate:"omitempty,is-subscription-status"`
	PlanVariationID *string                    `json:"plan_variation_id,omitempty"`
	CardID          *string                    `json:"card_id,omitempty"`
	Cadence         *string                    `json:"cadence,omitempty"`
	AvailableCredit *int                       `json:"available_credit,omitempty" binding:"omitempty,min=0"`
	GiftCredit      *int                       `json:"gift_credit,omitempty" binding:"omitempty,min=0"`
	StartDate       *int64                     `json:"start_date,omitempty"`
	EndDate         *int64                     `json:"end_date,omitempty"`
}

func (p SubscriptionPatch) Empty() bool {
	return p.Status == nil && p.PlanVariationID == nil && p.CardID == nil && p.Cadence == nil &&
		p.AvailableCredit == nil && p.GiftCredit == nil && p.StartDate == nil && p.EndDate == nil
}

// SubscriptionPatchBody - то же самое плюс business_id для backend
type SubscriptionPatchBody struct {
	SubscriptionPatch
	BusinessID string `json:"business_id"`
}

type BusinessBody struct {
	BusinessID string `json:"business_id"`
}

// SubscriptionsView - ответ /api/subscriptions
type SubscriptionsView struct {
	Subscriptions []models.UserSubscription `json:"subscriptions"`
	Current       *models.UserSubscription  `json:"current,omitempty"`
	Active        []models.UserSubscription `json:"active"`
	Credits       CreditsView               `json:"credits"`
}

type CreditsView struct {
	Available int `json:"available"`
	Gift      int `json:"gift"`
	Total     int `json:"total"`
}

// SubscribeRequest - подписка на тариф уже привязанной картой
type SubscribeRequest struct {
	PlanVariationID string  `json:"plan_variation_id" binding:"required"`
	CardID          string  `json:"card_id" binding:"required"`
	Amount          float64 `json:"amount,omitempty" binding:"omitempty,min=0"`
}

// SetCurrentRequest - выбор текущей подписки на главной
type SetCurrentRequest struct {
	ID int64 `json:"id" binding:"required"`
}
