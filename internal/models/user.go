package models

// UserProfile - профиль текущего пользователя (/auth/me)
type UserProfile struct {
	ID               int64  `json:"id"`
	CreatedAt        int64  `json:"created_at"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	SquareCustomerID string `json:"square_customer_id"`
	Role             string `json:"role"`
}

// AdminUser - пользователь бизнеса в админке
type AdminUser struct {
	ID               int64  `json:"id"`
	CreatedAt        int64  `json:"created_at"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	SquareCustomerID string `json:"square_customer_id"`
	Role             string `json:"role"`
	BusinessID       string `json:"business_id"`
}
