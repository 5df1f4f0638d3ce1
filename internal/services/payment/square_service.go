package payment

import (
	"strings"

	"sidequest_portal/internal/services/dto"
)

const (
	SquareEnvSandbox    = "sandbox"
	SquareEnvProduction = "production"

	squareSandboxScript    = "https://sandbox.web.squarecdn.com/v1/square.js"
	squareProductionScript = "https://web.squarecdn.com/v1/square.js"
)

// SquareService хранит публичные идентификаторы Square для браузерного виджета.
// Токен карты браузер получает сам, портал видит только одноразовый source_id.
type SquareService struct {
	ApplicationID string
	LocationID    string
	Environment   string
}

// NewSquareService нормализует окружение: все, кроме production, считается sandbox.
func NewSquareService(applicationID, locationID, environment string) *SquareService {
	env := strings.ToLower(strings.TrimSpace(environment))
	if env != SquareEnvProduction {
		env = SquareEnvSandbox
	}
	return &SquareService{
		ApplicationID: applicationID,
		LocationID:    locationID,
		Environment:   env,
	}
}

// Configured - виджет можно показывать только при заданных application и location id
func (s *SquareService) Configured() bool {
	return s.ApplicationID != "" && s.LocationID != ""
}

// ScriptURL - адрес Web Payments SDK для текущего окружения
func (s *SquareService) ScriptURL() string {
	if s.Environment == SquareEnvProduction {
		return squareProductionScript
	}
	return squareSandboxScript
}

func (s *SquareService) WidgetConfig() dto.PaymentConfig {
	return dto.PaymentConfig{
		ApplicationID: s.ApplicationID,
		LocationID:    s.LocationID,
		Environment:   s.Environment,
		ScriptURL:     s.ScriptURL(),
	}
}
