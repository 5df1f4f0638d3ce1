package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

const (
	// Системные и неизвестные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeUnknownError         ErrorCode = "UNKNOWN_ERROR"

	// Ошибки общения с backend API
	CodeBackendError       ErrorCode = "BACKEND_ERROR"
	CodeBackendTimeout     ErrorCode = "BACKEND_TIMEOUT"
	CodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	CodeNetworkError       ErrorCode = "NETWORK_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Кредиты и подписки
	CodeInsufficientCredit       ErrorCode = "INSUFFICIENT_CREDIT"
	CodeActiveSubscriptionExists ErrorCode = "ACTIVE_SUBSCRIPTION_EXISTS"
	CodeForeignBusiness          ErrorCode = "FOREIGN_BUSINESS"

	// Аутентификация и авторизация
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeSessionExpired ErrorCode = "SESSION_EXPIRED"
)
