package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	SubscriptionHandler *SubscriptionHandler
	PlanHandler         *PlanHandler
	RedeemHandler       *RedeemHandler
	PaymentHandler      *PaymentHandler
	AdminHandler        *AdminHandler
	NavigationHandler   *NavigationHandler
	PageHandler         *PageHandler
}
