package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/posauth/internal/config"
	"github.com/iudanet/posauth/internal/crypto"
	"github.com/iudanet/posauth/internal/issuer"
	"github.com/iudanet/posauth/internal/logging"
	"github.com/iudanet/posauth/internal/server"
	"github.com/iudanet/posauth/internal/server/storage/backends"
	"github.com/iudanet/posauth/internal/telemetry"
	"github.com/iudanet/posauth/internal/token"
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

	cfg, err := config.Load(config.ServiceIssuer, os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Show version and exit if requested
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
		logger.Error("auth-service stopped with error", slog.Any("error", err))
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

	users, err := backends.Open(ctx, cfg.StorageDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := users.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	hasher, err := crypto.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	if hasher.Cost() != cfg.BcryptCost {
		logger.Warn("bcrypt cost out of range, using default", slog.Int("cost", hasher.Cost()))
	}

	tokens, err := token.NewIssuer([]byte(cfg.JWTSecret))
	if err != nil {
		return err
	}

	handler := server.NewIssuerHandler(server.IssuerDeps{
		Logger:  logger,
		Service: issuer.NewService(users, hasher, tokens),
		Pinger:  users,
		Version: Version,
	})

	logger.Info("auth-service starting",
		slog.String("version", Version),
		slog.String("addr", cfg.Addr),
		slog.String("storage", cfg.StorageDriver))

	return server.New(logger, cfg.Addr, handler, cfg.ShutdownTimeout).Run(ctx)
}

func printVersion() {
	fmt.Printf("POS auth-service\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
