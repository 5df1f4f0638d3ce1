package dto

// CardInput - данные карты от платежного виджета (одноразовый токен и адрес)
type CardInput struct {
	SourceID       string `json:"source_id" binding:"required"`
	CardToken      string `json:"card_token,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	CountryCode    string `json:"country_code,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
}

// CheckoutRequest - оформление подписки клиентом.
// CheckoutID одинаков для повторных отправок одной и той же формы.
type CheckoutRequest struct {
	CheckoutID      string    `json:"checkout_id,omitempty" binding:"omitempty,max=64"`
	PlanVariationID string    `json:"plan_variation_id" binding:"required"`
	Amount          float64   `json:"amount,omitempty" binding:"omitempty,min=0"`
	Card            CardInput `json:"card" binding:"required"`
}

// AdminCheckoutRequest - оформление подписки админом за пользователя
type AdminCheckoutRequest struct {
	CheckoutID      string     `json:"checkout_id,omitempty" binding:"omitempty,max=64"`
	UserID          string     `json:"user_id" binding:"required"`
	PlanVariationID string     `json:"plan_variation_id" binding:"required"`
	WithoutCard     bool       `json:"without_card"`
	Card            *CardInput `json:"card,omitempty" binding:"required_if=WithoutCard false"`
}

// AdminAddCardRequest - привязка карты пользователю из админки
type AdminAddCardRequest struct {
	UserID string    `json:"user_id" binding:"required"`
	Card   CardInput `json:"card" binding:"required"`
}

// CheckoutResult - итог двух шагов оформления
type CheckoutResult struct {
	CheckoutID     string `json:"checkout_id"`
	CardID         string `json:"card_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Status         string `json:"status,omitempty"`
	Replayed       bool   `json:"replayed,omitempty"`
}

// PaymentConfig - идентификаторы Square для браузерного виджета
type PaymentConfig struct {
	ApplicationID string `json:"application_id"`
	LocationID    string `json:"location_id"`
	Environment   string `json:"environment"`
	ScriptURL     string `json:"script_url"`
}

// --- Тела запросов к backend ---

type AddCardBody struct {
	SourceID       string `json:"sourceId"`
	CardToken      string `json:"cardToken"`
	PostalCode     string `json:"postalCode"`
	CountryCode    string `json:"countryCode"`
	CardHolderName string `json:"cardHolderName"`
	BusinessID     string `json:"business_id"`
	UserID         string `json:"user_id,omitempty"`
}

func NewAddCardBody(in CardInput, businessID, userID string) AddCardBody {
	token := in.CardToken
	if token == "" {
		token = in.SourceID
	}
	return AddCardBody{
		SourceID:       in.SourceID,
		CardToken:      token,
		PostalCode:     in.PostalCode,
		CountryCode:    in.CountryCode,
		CardHolderName: in.CardHolderName,
		BusinessID:     businessID,
		UserID:         userID,
	}
}

type CreateSubscriptionBody struct {
	BusinessID      string  `json:"business_id"`
	PlanVariationID string  `json:"plan_variation_id"`
	CardID          string  `json:"card_id,omitempty"`
	UserID          string  `json:"user_id,omitempty"`
	Amount          float64 `json:"amount,omitempty"`
}

// SubscribeInput - параметры создания подписки клиентом
type SubscribeInput struct {
	PlanVariationID string
	CardID          string
	Amount          float64
}
