package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iudanet/posauth/internal/issuer"
	"github.com/iudanet/posauth/internal/permissions"
	"github.com/iudanet/posauth/internal/server/storage"
	"github.com/iudanet/posauth/internal/validation"
	"github.com/iudanet/posauth/pkg/api"
)

// AuthHandler обрабатывает регистрацию и логин
type AuthHandler struct {
	logger  *slog.Logger
	service *issuer.Service
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, service *issuer.Service) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
	}
}

// Register обрабатывает POST /register
// Регистрация нового пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Парсим request body
	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	user, err := h.service.Register(ctx, issuer.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrMissingField):
			h.logger.WarnContext(ctx, "register: missing fields", slog.Any("error", err))
			sendError(h.logger, w, http.StatusBadRequest, api.CodeMissingFields, err.Error())
		case errors.Is(err, validation.ErrInvalidField):
			h.logger.WarnContext(ctx, "register: invalid field", slog.Any("error", err))
			sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidField, err.Error())
		case errors.Is(err, storage.ErrUserAlreadyExists):
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			sendError(h.logger, w, http.StatusConflict, api.CodeUsernameTaken, "Username already exists")
		default:
			h.logger.ErrorContext(ctx, "failed to register user", slog.Any("error", err))
			sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternalError, "internal server error")
		}
		return
	}

	if !permissions.Known(user.Role) {
		h.logger.WarnContext(ctx, "registered user with unclassified role, permissions will be deny-all",
			slog.String("username", user.Username),
			slog.String("role", user.Role))
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID),
		slog.String("role", user.Role))

	resp := api.RegisterResponse{
		Message:  fmt.Sprintf("User %s registered successfully", user.Username),
		Username: user.Username,
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login обрабатывает POST /login
// Аутентификация пользователя и выдача токена
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, http.StatusBadRequest, api.CodeInvalidRequest, "invalid request body")
		return
	}

	accessToken, claims, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrMissingField):
			sendError(h.logger, w, http.StatusBadRequest, api.CodeMissingFields, "Missing username or password")
		case errors.Is(err, issuer.ErrInvalidCredentials):
			// Одинаковый ответ для неизвестного пользователя и неверного пароля
			h.logger.WarnContext(ctx, "login failed", slog.String("username", req.Username))
			sendError(h.logger, w, http.StatusUnauthorized, api.CodeInvalidCredentials, "Invalid username or password")
		default:
			h.logger.ErrorContext(ctx, "failed to login", slog.Any("error", err))
			sendError(h.logger, w, http.StatusInternalServerError, api.CodeInternalError, "internal server error")
		}
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", req.Username),
		slog.String("user_id", claims.Subject),
		slog.Time("expires_at", claims.ExpiresAt.Time))

	sendJSON(h.logger, w, api.TokenResponse{AccessToken: accessToken}, http.StatusOK)
}
