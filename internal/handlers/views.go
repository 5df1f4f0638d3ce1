package handlers

import (
	"sidequest_portal/internal/models"
	"sidequest_portal/internal/services/dto"
	"sidequest_portal/internal/store"
)

// Сборка ответов из кэша сессии. Кроме сумм кредитов ничего не вычисляется.

func creditsView(subs []models.UserSubscription) dto.CreditsView {
	totals := store.SumCredits(subs)
	return dto.CreditsView{
		Available: totals.Available,
		Gift:      totals.Gift,
		Total:     totals.Total,
	}
}

func subscriptionsView(st store.SubscriptionsState) dto.SubscriptionsView {
	list := st.List.Data
	if list == nil {
		list = []models.UserSubscription{}
	}
	active := store.ActiveSubscriptions(list)
	if active == nil {
		active = []models.UserSubscription{}
	}
	return dto.SubscriptionsView{
		Subscriptions: list,
		Current:       st.Current,
		Active:        active,
		Credits:       creditsView(list),
	}
}

func redeemView(st store.State) dto.RedeemView {
	items := st.Redeem.Items.Data
	if items == nil {
		items = []models.RedeemItem{}
	}
	credits := creditsView(st.Subscriptions.List.Data)
	return dto.RedeemView{
		Items:     items,
		Page:      st.Redeem.Page,
		PerPage:   st.Redeem.PerPage,
		HasMore:   st.Redeem.HasMore,
		Credits:   credits,
		CanNormal: credits.Available > 0,
		CanGuest:  credits.Gift > 0,
	}
}
