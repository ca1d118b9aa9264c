package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"` // уникальный username
	Password string `json:"password"` // пароль в открытом виде, хешируется на сервере
	Role     string `json:"role"`     // роль пользователя (manager, cashier, ...)
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	Message  string `json:"message"`  // сообщение об успешной регистрации
	Username string `json:"username"` // созданный username
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse представляет ответ с токеном доступа
type TokenResponse struct {
	AccessToken string `json:"accessToken"` // подписанный JWT (HS256)
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // текст HTTP статуса
	Message string `json:"message,omitempty"` // человекочитаемое описание
	Code    string `json:"code"`              // стабильный машинный код, см. errors.go
}
