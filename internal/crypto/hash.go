package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, когда пароль не совпадает с хешем
var ErrMismatch = errors.New("password does not match hash")

// PasswordHasher хеширует пароли через bcrypt (адаптивная стоимость, соль на каждый вызов)
type PasswordHasher struct {
	// dummyHash сравнивается с паролем, когда пользователь не найден,
	// чтобы время ответа не выдавало существование username
	dummyHash []byte
	cost      int
}

// NewPasswordHasher создает hasher с заданной стоимостью.
// cost вне диапазона [bcrypt.MinCost, bcrypt.MaxCost] заменяется на bcrypt.DefaultCost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, fmt.Errorf("failed to generate dummy password: %w", err)
	}
	// bcrypt принимает не больше 72 байт, 32 случайных байта укладываются
	dummy, err := bcrypt.GenerateFromPassword(filler, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy hash: %w", err)
	}

	return &PasswordHasher{cost: cost, dummyHash: dummy}, nil
}

// Cost returns the bcrypt cost used for new hashes
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash возвращает bcrypt хеш пароля
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// Verify проверяет пароль против сохраненного хеша.
// Возвращает ErrMismatch при несовпадении и обернутую ошибку при битом хеше.
func (h *PasswordHasher) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("failed to compare password hash: %w", err)
}

// VerifyDummy тратит столько же времени, сколько Verify для существующего пользователя,
// и всегда возвращает ErrMismatch
func (h *PasswordHasher) VerifyDummy(password string) error {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
	return ErrMismatch
}
