package models

// Card - сохраненная карта (ответ /card/add)
type Card struct {
	ID             int64  `json:"id"`
	Token          string `json:"token"`
	Last4          string `json:"last_4"`
	CardID         string `json:"card_id"`
	UserID         string `json:"user_id"`
	ExpYear        int    `json:"exp_year"`
	ExpMonth       int    `json:"exp_month"`
	CardBrand      string `json:"card_brand"`
	CreatedAt      int64  `json:"created_at"`
	BusinessID     string `json:"business_id"`
	CustomerID     string `json:"customer_id"`
	MerchantID     string `json:"merchant_id"`
	CardholderName string `json:"cardholder_name"`
}

// CreatedSubscription - ответ create-a-subscription
type CreatedSubscription struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	PlanID    string `json:"plan_id"`
	CardID    string `json:"card_id"`
	CreatedAt string `json:"created_at"`
}
