// Package server собирает HTTP маршруты сервисов и управляет жизненным циклом http.Server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/iudanet/posauth/internal/issuer"
	"github.com/iudanet/posauth/internal/server/handlers"
	"github.com/iudanet/posauth/internal/server/middleware"
	"github.com/iudanet/posauth/internal/webhook"
)

const healthPath = "/health"

// IssuerDeps зависимости сервиса регистрации и логина
type IssuerDeps struct {
	Logger  *slog.Logger
	Service *issuer.Service
	Pinger  handlers.Pinger
	Version string
}

// NewIssuerHandler собирает маршруты auth-service
func NewIssuerHandler(deps IssuerDeps) http.Handler {
	auth := handlers.NewAuthHandler(deps.Logger, deps.Service)
	health := handlers.NewHealthHandler(deps.Logger, deps.Pinger, deps.Version)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", auth.Register)
	mux.HandleFunc("POST /login", auth.Login)
	mux.HandleFunc("GET "+healthPath, health.Health)

	return wrap(deps.Logger, "auth-service", mux, nil)
}

// WebhookDeps зависимости webhook'а
type WebhookDeps struct {
	Logger    *slog.Logger
	Validator *webhook.Validator
	Version   string
}

// NewWebhookHandler собирает маршруты auth-webhook
func NewWebhookHandler(deps WebhookDeps) http.Handler {
	hook := handlers.NewWebhookHandler(deps.Logger, deps.Validator)
	health := handlers.NewHealthHandler(deps.Logger, nil, deps.Version)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", hook.Auth)
	mux.HandleFunc("GET "+healthPath, health.Health)

	// Паника в webhook'е отвечает телом отказа, sync backend его понимает
	return wrap(deps.Logger, "auth-webhook", mux, handlers.WriteWebhookFailure)
}

// Порядок: otelhttp -> logging -> recovery -> mux
func wrap(logger *slog.Logger, name string, mux http.Handler, onPanic middleware.PanicResponder) http.Handler {
	var h http.Handler = mux
	h = middleware.Recovery(logger, onPanic)(h)
	h = middleware.Logging(logger, healthPath)(h)
	return otelhttp.NewHandler(h, name,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Server обертка над http.Server с graceful shutdown
type Server struct {
	logger          *slog.Logger
	http            *http.Server
	shutdownTimeout time.Duration
}

// New создает Server на addr
func New(logger *slog.Logger, addr string, handler http.Handler, shutdownTimeout time.Duration) *Server {
	return &Server{
		logger: logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Run слушает адрес и обслуживает запросы до отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx, затем завершает работу
// в пределах shutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Текущие запросы дорабатывают после отмены ctx
	base := context.WithoutCancel(ctx)
	s.http.BaseContext = func(net.Listener) context.Context { return base }

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("addr", ln.Addr().String()))
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", slog.Duration("timeout", s.shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
