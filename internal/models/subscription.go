package models

import "encoding/json"

// UserSubscription - подписка пользователя, как ее отдает backend.
// Один и тот же тип используется в клиентской и админской части.
type UserSubscription struct {
	ID                 int64              `json:"id"`
	CreatedAt          int64              `json:"created_at"`
	Status             SubscriptionStatus `json:"status"`
	ObjectID           string             `json:"object_id"`
	CardID             string             `json:"card_id"`
	LocationID         string             `json:"location_id"`
	PlanVariationID    string             `json:"plan_variation_id"`
	StartDate          int64              `json:"start_date"`
	EndDate            int64              `json:"end_date"`
	CancellationData   json.RawMessage    `json:"cancellation_data,omitempty"`
	Version            int64              `json:"version"`
	Email              string             `json:"email"`
	BusinessID         string             `json:"business_id"`
	UserID             string             `json:"user_id"`
	CustomerID         string             `json:"customer_id"`
	Cadence            string             `json:"cadence"`
	AvailableCredit    int                `json:"available_credit"`
	GiftCredit         int                `json:"gift_credit"`
	SubscriptionAmount float64            `json:"subscription_amount"`
}

func (s UserSubscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

type SubscriptionPlan struct {
	ID              int64    `json:"id"`
	CreatedAt       int64    `json:"created_at"`
	ObjectID        string   `json:"object_id"`
	Name            string   `json:"name"`
	EligibleItemIDs []string `json:"eligible_item_ids"`
	Version         int64    `json:"version"`
	BusinessID      string   `json:"business_id"`
	Status          string   `json:"status"`
}

// PlanVariation - покупаемый тариф плана (цена, периодичность, кредиты)
type PlanVariation struct {
	ID                 int64   `json:"id"`
	CreatedAt          int64   `json:"created_at"`
	ObjectID           string  `json:"object_id"`
	PlanID             string  `json:"plan_id"`
	Name               string  `json:"name"`
	Version            int64   `json:"version"`
	Status             string  `json:"status"`
	Cadence            string  `json:"cadence"`
	Amount             float64 `json:"amount"`
	Type               string  `json:"type"`
	BusinessID         string  `json:"business_id"`
	Credit             int     `json:"credit"`
	CreditChargeAmount float64 `json:"credit_charge_amount"`
	Description        string  `json:"description"`
}

// PlanCatalog - ответ subscription-variation
type PlanCatalog struct {
	SubscriptionPlans []SubscriptionPlan `json:"subscription_plans"`
	PlanVariations    []PlanVariation    `json:"plan_variations"`
}

// VariationsFor возвращает тарифы плана с object_id planID
func (c PlanCatalog) VariationsFor(planID string) []PlanVariation {
	var out []PlanVariation
	for _, v := range c.PlanVariations {
		if v.PlanID == planID {
			out = append(out, v)
		}
	}
	return out
}

func (c PlanCatalog) PlanByID(planID string) (SubscriptionPlan, bool) {
	for _, p := range c.SubscriptionPlans {
		if p.ObjectID == planID {
			return p, true
		}
	}
	return SubscriptionPlan{}, false
}
