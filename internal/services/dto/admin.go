package dto

import "sidequest_portal/internal/models"

// UserSearchQuery - поиск пользователей по email с пагинацией backend
type UserSearchQuery struct {
	Email      string `form:"email"`
	PageNumber int    `form:"page_number" binding:"omitempty,min=0"`
}

// DashboardView - сводка для /admin/dashboard
type DashboardView struct {
	TotalUsers          int                `json:"total_users"`
	TotalSubscriptions  int                `json:"total_subscriptions"`
	ActiveSubscriptions int                `json:"active_subscriptions"`
	Redeem              RedeemCountsView   `json:"redeem"`
	RecentUsers         []models.AdminUser `json:"recent_users"`
}

type RedeemCountsView struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// MemberView - пользователь вместе с его подписками (/admin/members)
type MemberView struct {
	User          models.AdminUser          `json:"user"`
	Subscriptions []models.UserSubscription `json:"subscriptions"`
	Editable      bool                      `json:"editable"`
}

// AdminCreateUserRequest - регистрация пользователя из админки (сессия админа не меняется)
type AdminCreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// AdminUpdateUserRequest - изменение имени, email и роли
type AdminUpdateUserRequest struct {
	Name  string          `json:"name" binding:"required"`
	Email string          `json:"email" binding:"required,email"`
	Role  models.UserRole `json:"role" binding:"required,oneof=client admin super_admin owner"`
}

type AdminUserBody struct {
	UserID     int64           `json:"user_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	BusinessID string          `json:"business_id"`
}

// RedeemDecisionRequest - approve/reject из /admin/redeem
type RedeemDecisionRequest struct {
	UserID string              `json:"user_id,omitempty"`
	Status models.RedeemStatus `json:"status" binding:"required" validate:"is-redeem-status"`
}
