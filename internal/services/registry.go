package services

import (
	"time"

	"sidequest_portal/internal/services/payment"
)

// ServiceContainer содержит все сервисы портала.
type ServiceContainer struct {
	AuthService         AuthService
	SubscriptionService SubscriptionService
	PlanService         PlanService
	RedeemService       RedeemService
	AdminService        AdminService
	PaymentService      PaymentService
	NavigationService   NavigationService
}

// Settings - то, что сервисам нужно из конфига
type Settings struct {
	BusinessID      string
	AdminBusinessID string
	Square          *payment.SquareService
	CheckoutTTL     time.Duration
}

func NewServiceContainer(cfg Settings) *ServiceContainer {
	subscriptions := NewSubscriptionService(cfg.BusinessID)
	plans := NewPlanService(cfg.BusinessID, subscriptions)
	admin := NewAdminService(cfg.AdminBusinessID)

	square := cfg.Square
	if square == nil {
		square = payment.NewSquareService("", "", "")
	}

	return &ServiceContainer{
		AuthService:         NewAuthService(cfg.BusinessID),
		SubscriptionService: subscriptions,
		PlanService:         plans,
		RedeemService:       NewRedeemService(cfg.BusinessID, subscriptions),
		AdminService:        admin,
		PaymentService:      NewPaymentService(cfg.BusinessID, square, payment.NewReplayCache(cfg.CheckoutTTL), plans, admin),
		NavigationService:   NewNavigationService(),
	}
}
