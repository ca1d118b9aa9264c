// Package config собирает настройки сервисов: значения по умолчанию,
// затем .env файл, затем переменные окружения, затем флаги командной строки.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iudanet/posauth/internal/logging"
	"github.com/iudanet/posauth/internal/server/storage/backends"
)

// Service определяет, для какого бинарника загружается конфигурация
type Service string

const (
	// ServiceIssuer - сервис регистрации и логина
	ServiceIssuer Service = "auth-service"
	// ServiceWebhook - webhook проверки токенов
	ServiceWebhook Service = "auth-webhook"
)

// ErrMissingSecret returned when the issuer is started without JWT_SECRET_KEY
var ErrMissingSecret = errors.New("JWT_SECRET_KEY is required")

// Config holds runtime settings for both services.
type Config struct {
	Service         Service
	Addr            string
	JWTSecret       string
	StorageDriver   string
	DatabaseDSN     string
	LogLevel        string
	LogFormat       string
	OTLPEndpoint    string
	ServiceName     string
	ShutdownTimeout time.Duration
	BcryptCost      int
	TracesStdout    bool
	ShowVersion     bool
}

// Defaults возвращает значения по умолчанию для сервиса
func Defaults(service Service) *Config {
	cfg := &Config{
		Service:         service,
		Addr:            ":8080",
		StorageDriver:   backends.DriverSQLite,
		DatabaseDSN:     "posauth.db",
		BcryptCost:      12,
		LogLevel:        "info",
		LogFormat:       logging.FormatText,
		ServiceName:     string(service),
		ShutdownTimeout: 10 * time.Second,
	}
	if service == ServiceWebhook {
		cfg.Addr = ":8081"
	}
	return cfg
}

// LoadDotEnv загружает переменные из .env файлов.
// Уже заданные переменные окружения не перезаписываются, отсутствующий файл не ошибка.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load builds a Config from defaults, the environment (via getenv) and args.
func Load(service Service, args []string, getenv func(string) string) (*Config, error) {
	cfg := Defaults(service)

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("ADDR", &c.Addr)
	setString("JWT_SECRET_KEY", &c.JWTSecret)
	setString("STORAGE_DRIVER", &c.StorageDriver)
	setString("DATABASE_DSN", &c.DatabaseDSN)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("LOG_FORMAT", &c.LogFormat)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.OTLPEndpoint)
	setString("OTEL_SERVICE_NAME", &c.ServiceName)

	if v := getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST %q: %w", v, err)
		}
		c.BcryptCost = n
	}
	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		c.ShutdownTimeout = d
	}
	if v := getenv("OTEL_TRACES_STDOUT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTEL_TRACES_STDOUT %q: %w", v, err)
		}
		c.TracesStdout = b
	}
	return nil
}

// parseFlags перекрывает значения флагами командной строки.
//
//	-a string   адрес для HTTP сервера
//	-d string   DSN базы данных
//	-driver     драйвер хранилища (sqlite, postgres, bolt)
//	-log-level  уровень логирования
//	-version    показать версию
func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet(string(c.Service), flag.ContinueOnError)

	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to run server")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text, json)")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
	fs.BoolVar(&c.ShowVersion, "version", false, "Show version information")

	if c.Service == ServiceIssuer {
		fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN or file path")
		fs.StringVar(&c.StorageDriver, "driver", c.StorageDriver, "storage driver (sqlite, postgres, bolt)")
		fs.IntVar(&c.BcryptCost, "bcrypt-cost", c.BcryptCost, "bcrypt cost")
	}

	return fs.Parse(args)
}

// Validate проверяет собранную конфигурацию.
// Webhook без секрета запускается: каждый запрос с токеном получит 500.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address is empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}

	if c.Service != ServiceIssuer {
		return nil
	}

	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.StorageDriver {
	case backends.DriverSQLite, backends.DriverPostgres, backends.DriverBolt:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return errors.New("DATABASE_DSN is empty")
	}
	return nil
}
