package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // время создания
	ID           string    `json:"id" db:"id"`                 // UUID пользователя, используется как sub в токене
	Username     string    `json:"username" db:"username"`     // уникальный username
	PasswordHash string    `json:"-" db:"password_hash"`       // bcrypt хеш пароля, никогда не сериализуется
	Role         string    `json:"role" db:"role"`             // роль (manager, cashier, ...)
}
