package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iudanet/posauth/internal/webhook"
	"github.com/iudanet/posauth/pkg/api"
)

// WebhookHandler отвечает sync backend'у на запросы аутентификации
type WebhookHandler struct {
	logger    *slog.Logger
	validator *webhook.Validator
}

// NewWebhookHandler создает новый handler для webhook
func NewWebhookHandler(logger *slog.Logger, validator *webhook.Validator) *WebhookHandler {
	return &WebhookHandler{
		logger:    logger,
		validator: validator,
	}
}

// Auth обрабатывает POST /auth
func (h *WebhookHandler) Auth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	var req api.AuthRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		// Пустое тело трактуем как отсутствие токена
		h.logger.WarnContext(ctx, "failed to decode auth request", slog.Any("error", err))
		span.SetAttributes(attribute.String("auth.failure", api.CodeInvalidRequest))
		sendJSON(h.logger, w, api.AuthFailureResponse{
			ClientInfo:    "Invalid request body",
			Reason:        api.CodeInvalidRequest,
			Authenticated: false,
		}, http.StatusBadRequest)
		return
	}

	out := h.validator.Validate(req.Token)
	span.SetAttributes(attribute.String("auth.failure", out.Failure.String()))

	if !out.Authenticated() {
		h.logFailure(r, out)
		sendFailure(h.logger, w, out.Failure)
		return
	}

	span.SetAttributes(
		attribute.String("auth.user_id", out.Subject),
		attribute.String("auth.role", out.Role),
	)
	h.logger.InfoContext(ctx, "token accepted",
		slog.String("user_id", out.Subject),
		slog.String("role", out.Role))

	resp := api.AuthSuccessResponse{
		Authenticated:     true,
		UserID:            out.Subject,
		ExpirationSeconds: webhook.ExpirationSeconds,
		Permissions:       out.Permissions,
		IdentityServiceMetadata: api.IdentityMetadata{
			UserRole: out.Role,
		},
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

func (h *WebhookHandler) logFailure(r *http.Request, out webhook.Outcome) {
	ctx := r.Context()
	attrs := []any{
		slog.String("reason", out.Failure.String()),
		slog.String("remote_addr", r.RemoteAddr),
	}
	if out.Err != nil {
		attrs = append(attrs, slog.Any("error", out.Err))
	}

	switch out.Failure {
	case webhook.Misconfigured, webhook.Internal:
		trace.SpanFromContext(ctx).SetStatus(codes.Error, out.Failure.String())
		h.logger.ErrorContext(ctx, "token validation failed", attrs...)
	default:
		h.logger.WarnContext(ctx, "token rejected", attrs...)
	}
}

// sendFailure пишет ответ об отказе в формате webhook
func sendFailure(logger *slog.Logger, w http.ResponseWriter, f webhook.Failure) {
	sendJSON(logger, w, api.AuthFailureResponse{
		ClientInfo:    f.ClientInfo(),
		Reason:        f.Code(),
		Authenticated: false,
	}, f.Status())
}

// WriteWebhookFailure пишет ответ об отказе с внутренней ошибкой.
// Используется recovery middleware webhook-сервиса.
func WriteWebhookFailure(logger *slog.Logger, w http.ResponseWriter) {
	sendFailure(logger, w, webhook.Internal)
}
