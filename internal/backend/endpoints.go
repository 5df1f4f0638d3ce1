package backend

import (
	"fmt"
	"net/url"
)

// Пути backend API
const (
	PathSignup        = "/auth/signup"
	PathLogin         = "/auth/login"
	PathMe            = "/auth/me"
	PathUpdateProfile = "/auth/user/update"

	PathClientSubscriptions = "/client/subscription"
	PathCreateSubscription  = "/subscription/user/create-a-subscription"
	PathClientPlans         = "/client/subscription/subscription-variation"
	PathCard                = "/card/add"
	PathClientRedeem        = "/client/redeem"
	PathClientRedeemHistory = "/client/redeem/history"
	PathCreateRedeem        = "/redeem/create"

	PathAdminUsers                    = "/admin/users"
	PathAdminUser                     = "/admin/user"
	PathAdminAllSubscriptions         = "/admin/all_user_subscription"
	PathAdminCard                     = "/admin/card/add"
	PathAdminRedeem                   = "/admin/redeem"
	PathAdminUpdateRedeem             = "/admin/redeem/update"
	PathAdminPlans                    = "/admin/subscription/subscription-variation"
	PathAdminUpdateSubscription       = "/admin/subscription/update-user-subscription"
	PathAdminCreateSubscription       = "/admin/subscription/user/create-a-subscription"
	PathAdminCreateSubscriptionNoCard = PathAdminCreateSubscription + "/without-card"
)

// Join добавляет к base экранированные сегменты пути
func Join(base string, segments ...any) string {
	for _, s := range segments {
		base += "/" + url.PathEscape(fmt.Sprint(s))
	}
	return base
}

func ClientSubscriptionPath(id any) string { return Join(PathClientSubscriptions, id) }
func CancelSubscriptionPath(id any) string { return Join(PathClientSubscriptions, id) + "/cancel" }
func CardPath(cardID string) string        { return Join(PathCard, cardID) }
func AdminUserPath(id any) string          { return Join(PathAdminUser, id) }
func AdminUpdateRedeemPath(id any) string  { return Join(PathAdminUpdateRedeem, id) }
func AdminUpdateSubscriptionPath(id any) string {
	return Join(PathAdminUpdateSubscription, id)
}
