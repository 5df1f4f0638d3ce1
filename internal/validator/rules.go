package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"sidequest_portal/internal/models"
)

// registerCustomRules регистрирует кастомные правила на основе statuses.go
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-subscription-status", validateSubscriptionStatus)
	// Админ переводит заявку только из pending в approved/rejected
	mustRegister("is-redeem-status", validateRedeemDecision)
	mustRegister("is-redeem-type", validateRedeemType)
	mustRegister("is-nav-tab", validateNavTab)
}

func validateSubscriptionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения проверяет 'required'
	}
	switch models.SubscriptionStatus(value) {
	case models.SubscriptionStatusActive, models.SubscriptionStatusInactive,
		models.SubscriptionStatusCancelled, models.SubscriptionStatusSuspended:
		return true
	}
	return false
}

func validateRedeemDecision(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.RedeemStatus(value) {
	case models.RedeemStatusApproved, models.RedeemStatusRejected:
		return true
	}
	return false
}

// is-redeem-type не пропускает пустое значение: тип нужно выбрать явно
func validateRedeemType(fl validator.FieldLevel) bool {
	return models.RedeemType(fl.Field().String()).ButtonNumber() != 0
}

func validateNavTab(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.NavTab(value) {
	case models.NavTabPlans, models.NavTabSchedule, models.NavTabProfile:
		return true
	}
	return false
}
