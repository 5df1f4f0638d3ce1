package dto

import "sidequest_portal/internal/models"

// NavigationRequest - действие навигации
type NavigationRequest struct {
	Action string        `json:"action" binding:"required,oneof=set_page set_tab toggle_sidebar open_sidebar close_sidebar reset"`
	Page   string        `json:"page,omitempty" binding:"required_if=Action set_page"`
	Tab    models.NavTab `json:"tab,omitempty" binding:"required_if=Action set_tab" validate:"is-nav-tab"`
}
