package store

import "sidequest_portal/internal/models"

// ============================================
// Auth
// ============================================

func ReduceLogin(s State, role string) State {
	s.Auth.Authenticated = true
	s.Auth.Role = role
	return s
}

// ReduceSessionChange - при смене токена переносится только вход и оболочка страницы,
// данные прежнего пользователя не переживают смену сессии
func ReduceSessionChange(s State) State {
	next := NewState()
	next.Auth = s.Auth
	next.Navigation = s.Navigation
	return next
}

// ReduceLogout - после выхода от кэша сессии ничего не остается
func ReduceLogout(State) State {
	return NewState()
}

// ============================================
// Subscriptions
// ============================================

// ReduceSubscriptions кладет список целиком. Текущая подписка берется из нового
// списка по id, а если ее там нет или она не выбрана - первая в списке.
func ReduceSubscriptions(s SubscriptionsState, list []models.UserSubscription) SubscriptionsState {
	s.List = s.List.Fulfilled(list)

	var current *models.UserSubscription
	if s.Current != nil {
		for i := range list {
			if list[i].ID == s.Current.ID {
				sub := list[i]
				current = &sub
				break
			}
		}
	}
	if current == nil && len(list) > 0 {
		first := list[0]
		current = &first
	}
	s.Current = current
	return s
}

func ReduceSubscriptionDetail(s SubscriptionsState, sub *models.UserSubscription) SubscriptionsState {
	s.Detail = s.Detail.Fulfilled(sub)
	if sub != nil {
		cp := *sub
		s.Current = &cp
	}
	return s
}

// ============================================
// Redeem
// ============================================

// ReduceRedeemPage: страница 0 заменяет список, следующие дописываются.
// Полная страница значит, что дальше может быть еще.
func ReduceRedeemPage(s RedeemState, page int, items []models.RedeemItem) RedeemState {
	perPage := s.PerPage
	if perPage <= 0 {
		perPage = RedeemPerPage
	}
	if page == 0 {
		s.Items = s.Items.Fulfilled(items)
		s.Page = 0
		s.HasMore = len(items) == perPage
		return s
	}
	if len(items) == 0 {
		s.Items = s.Items.Fulfilled(s.Items.Data)
		s.HasMore = false
		return s
	}
	merged := make([]models.RedeemItem, 0, len(s.Items.Data)+len(items))
	merged = append(merged, s.Items.Data...)
	merged = append(merged, items...)
	s.Items = s.Items.Fulfilled(merged)
	s.Page = page
	s.HasMore = len(items) == perPage
	return s
}

// ============================================
// Navigation
// ============================================

type NavActionType string

const (
	NavSetPage       NavActionType = "set_page"
	NavSetTab        NavActionType = "set_tab"
	NavToggleSidebar NavActionType = "toggle_sidebar"
	NavOpenSidebar   NavActionType = "open_sidebar"
	NavCloseSidebar  NavActionType = "close_sidebar"
	NavReset         NavActionType = "reset"
)

type NavAction struct {
	Type NavActionType
	Page string
	Tab  models.NavTab
}

func ReduceNavigation(s NavigationState, a NavAction) NavigationState {
	switch a.Type {
	case NavSetPage:
		s.CurrentPage = a.Page
	case NavSetTab:
		s.ActiveTab = a.Tab
	case NavToggleSidebar:
		s.SidebarOpen = !s.SidebarOpen
	case NavOpenSidebar:
		s.SidebarOpen = true
	case NavCloseSidebar:
		s.SidebarOpen = false
	case NavReset:
		return NewNavigation()
	}
	return s
}

// ============================================
// Агрегаты для отображения
// ============================================

type CreditTotals struct {
	Available int `json:"available"`
	Gift      int `json:"gift"`
	Total     int `json:"total"`
}

func SumCredits(subs []models.UserSubscription) CreditTotals {
	var t CreditTotals
	for _, s := range subs {
		t.Available += s.AvailableCredit
		t.Gift += s.GiftCredit
	}
	t.Total = t.Available + t.Gift
	return t
}

func ActiveSubscriptions(subs []models.UserSubscription) []models.UserSubscription {
	var out []models.UserSubscription
	for _, s := range subs {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}

func HasActiveSubscription(subs []models.UserSubscription) bool {
	for _, s := range subs {
		if s.IsActive() {
			return true
		}
	}
	return false
}

type RedeemCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func CountRedeem(items []models.AdminRedeemRequest) RedeemCounts {
	var c RedeemCounts
	for _, it := range items {
		switch it.Status {
		case models.RedeemStatusPending:
			c.Pending++
		case models.RedeemStatusApproved:
			c.Approved++
		case models.RedeemStatusRejected:
			c.Rejected++
		}
	}
	return c
}
