package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/posauth/internal/config"
	"github.com/iudanet/posauth/internal/logging"
	"github.com/iudanet/posauth/internal/server"
	"github.com/iudanet/posauth/internal/telemetry"
	"github.com/iudanet/posauth/internal/token"
	"github.com/iudanet/posauth/internal/webhook"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(config.ServiceWebhook, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("auth-webhook stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Writer:         os.Stdout,
		Endpoint:       cfg.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: Version,
		Stdout:         cfg.TracesStdout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shutdown tracing", slog.Any("error", err))
		}
	}()

	// Без секрета webhook работает, но отклоняет каждый токен с 500
	var verifier *token.Verifier
	if cfg.JWTSecret != "" {
		verifier, err = token.NewVerifier([]byte(cfg.JWTSecret))
		if err != nil {
			return err
		}
	} else {
		logger.Error("JWT_SECRET_KEY is not set, every token will be rejected",
			slog.String("reason", webhook.Misconfigured.String()))
	}

	handler := server.NewWebhookHandler(server.WebhookDeps{
		Logger:    logger,
		Validator: webhook.NewValidator(verifier),
		Version:   Version,
	})

	logger.Info("auth-webhook starting",
		slog.String("version", Version),
		slog.String("addr", cfg.Addr))

	return server.New(logger, cfg.Addr, handler, cfg.ShutdownTimeout).Run(ctx)
}

func printVersion() {
	fmt.Printf("POS auth-webhook\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
