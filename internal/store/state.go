package store

import "sidequest_portal/internal/models"

// RedeemPerPage - размер страницы истории списаний
const RedeemPerPage = 5

type AuthState struct {
	Authenticated bool                          `json:"authenticated"`
	Role          string                        `json:"role,omitempty"`
	Profile       Resource[*models.UserProfile] `json:"profile"`
}

type SubscriptionsState struct {
	List    Resource[[]models.UserSubscription] `json:"list"`
	Current *models.UserSubscription            `json:"current,omitempty"`
	Detail  Resource[*models.UserSubscription]  `json:"detail"`
}

type PlansState struct {
	Catalog       Resource[models.PlanCatalog] `json:"catalog"`
	CurrentPlanID string                       `json:"current_plan_id,omitempty"`
}

type AdminState struct {
	Users         Resource[[]models.AdminUser]          `json:"users"`
	User          Resource[*models.AdminUser]           `json:"user"`
	Search        Resource[[]models.AdminUser]          `json:"search"`
	Subscriptions Resource[[]models.UserSubscription]   `json:"subscriptions"`
	Redeem        Resource[[]models.AdminRedeemRequest] `json:"redeem"`
	Catalog       Resource[models.PlanCatalog]          `json:"catalog"`
}

type RedeemState struct {
	Items   Resource[[]models.RedeemItem] `json:"items"`
	History Resource[[]models.RedeemItem] `json:"history"`
	Page    int                           `json:"page"`
	PerPage int                           `json:"per_page"`
	HasMore bool                          `json:"has_more"`
}

type CardsState struct {
	List Resource[[]models.Card] `json:"list"`
}

type NavigationState struct {
	CurrentPage string        `json:"current_page"`
	SidebarOpen bool          `json:"sidebar_open"`
	ActiveTab   models.NavTab `json:"active_tab"`
}

// State - весь кэш одной сессии
type State struct {
	Auth          AuthState          `json:"auth"`
	Subscriptions SubscriptionsState `json:"subscriptions"`
	Plans         PlansState         `json:"plans"`
	Admin         AdminState         `json:"admin"`
	Redeem        RedeemState        `json:"redeem"`
	Cards         CardsState         `json:"cards"`
	Navigation    NavigationState    `json:"navigation"`
}

func idle[T any]() Resource[T] {
	return Resource[T]{Status: StatusIdle}
}

// NewState - пустой кэш: все ресурсы idle
func NewState() State {
	return State{
		Auth: AuthState{Profile: idle[*models.UserProfile]()},
		Subscriptions: SubscriptionsState{
			List:   idle[[]models.UserSubscription](),
			Detail: idle[*models.UserSubscription](),
		},
		Plans: PlansState{Catalog: idle[models.PlanCatalog]()},
		Admin: AdminState{
			Users:         idle[[]models.AdminUser](),
			User:          idle[*models.AdminUser](),
			Search:        idle[[]models.AdminUser](),
			Subscriptions: idle[[]models.UserSubscription](),
			Redeem:        idle[[]models.AdminRedeemRequest](),
			Catalog:       idle[models.PlanCatalog](),
		},
		Redeem: RedeemState{
			Items:   idle[[]models.RedeemItem](),
			History: idle[[]models.RedeemItem](),
			PerPage: RedeemPerPage,
			HasMore: true,
		},
		Cards:      CardsState{List: idle[[]models.Card]()},
		Navigation: NewNavigation(),
	}
}

func NewNavigation() NavigationState {
	return NavigationState{CurrentPage: "/", ActiveTab: models.NavTabPlans}
}
