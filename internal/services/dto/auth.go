package dto

// SignupRequest - запрос регистрации
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest - частичное обновление профиля
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
}

// AuthUser - пользователь в ответе login/signup
type AuthUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse - ответ backend на login/signup
type AuthResponse struct {
	AuthToken string    `json:"authToken"`
	Role      string    `json:"role,omitempty"`
	User      *AuthUser `json:"user,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
}

// SessionInfo - что портал отдает браузеру после входа (без токена)
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
	Redirect      string `json:"redirect,omitempty"`
}

// --- Тела запросов к backend ---

type LoginBody struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	BusinessID string `json:"business_id"`
}

type SignupBody struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	BusinessID string `json:"business_id"`
}

type UpdateProfileBody struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	BusinessID string `json:"business_id"`
}
