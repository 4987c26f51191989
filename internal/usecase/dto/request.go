package dto

// SearchRequest - запрос на поиск мест в радиусе от точки.
// Latitude/Longitude равны nil, если параметр не передан.
type SearchRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Radius    *int     `json:"radius,omitempty"` // meters
	Page      int      `json:"page,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// ListRequest - запрос страницы всех мест
type ListRequest struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// RegisterRequest - регистрация пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Password string `json:"password" validate:"required,min=1,max=128"`
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// LoginRequest - получение токена по имени и паролю
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
