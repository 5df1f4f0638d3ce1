package models

// RedeemItem - запись о списании кредитов
type RedeemItem struct {
	ID                int64  `json:"id"`
	CreatedAt         int64  `json:"created_at"`
	BusinessID        string `json:"business_id"`
	ChargedCredit     int    `json:"charged_credit"`
	GiftChargeCredit  int    `json:"gift_charge_credit"`
	OrderID           string `json:"order_id"`
	UserID            string `json:"user_id"`
	PlanVariationName string `json:"plan_variation_name"`
}

// AdminRedeemRequest - заявка на списание в админке, статус меняет backend
type AdminRedeemRequest struct {
	RedeemItem
	Status RedeemStatus `json:"status"`
	Email  string       `json:"email,omitempty"`
	Name   string       `json:"name,omitempty"`
}
