package dto

import (
	"sidequest_portal/internal/models"
)

// CreateRedeemRequest - тип списания: normal (кредиты подписки) или guest (подарочные)
type CreateRedeemRequest struct {
	Type models.RedeemType `json:"type" validate:"is-redeem-type"`
}

type RedeemBody struct {
	BusinessID   string `json:"business_id"`
	ButtonNumber int    `json:"button_number"`
}

// RedeemDecisionBody - решение админа по заявке
type RedeemDecisionBody struct {
	BusinessID string              `json:"business_id"`
	Status     models.RedeemStatus `json:"status" validate:"is-redeem-status"`
	UserID     string              `json:"user_id,omitempty"`
}

// RedeemView - ответ /api/redeem
type RedeemView struct {
	Items     []models.RedeemItem `json:"items"`
	Page      int                 `json:"page"`
	PerPage   int                 `json:"per_page"`
	HasMore   bool                `json:"has_more"`
	Credits   CreditsView         `json:"credits"`
	CanNormal bool                `json:"can_redeem_normal"`
	CanGuest  bool                `json:"can_redeem_guest"`
}
