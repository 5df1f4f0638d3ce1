package models

type UserRole string
type SubscriptionStatus string
type RedeemStatus string
type RedeemType string
type NavTab string

const (
	UserRoleClient     UserRole = "client"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "super_admin"
	UserRoleOwner      UserRole = "owner"

	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusInactive  SubscriptionStatus = "INACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"

	RedeemStatusPending  RedeemStatus = "pending"
	RedeemStatusApproved RedeemStatus = "approved"
	RedeemStatusRejected RedeemStatus = "rejected"

	RedeemTypeNormal RedeemType = "normal"
	RedeemTypeGuest  RedeemType = "guest"

	NavTabPlans    NavTab = "plans"
	NavTabSchedule NavTab = "schedule"
	NavTabProfile  NavTab = "profile"
)

// IsAdmin - роли, которым открыта админка
func (r UserRole) IsAdmin() bool {
	switch r {
	case UserRoleAdmin, UserRoleSuperAdmin, UserRoleOwner:
		return true
	}
	return false
}

// ButtonNumber - номер кнопки, который backend ждет в /redeem/create
func (t RedeemType) ButtonNumber() int {
	switch t {
	case RedeemTypeNormal:
		return 1
	case RedeemTypeGuest:
		return 2
	}
	return 0
}
