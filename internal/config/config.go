package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/env"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logger   LoggerConfig   `koanf:"logger"`
	Worker   WorkerConfig   `koanf:"worker"`
	Gateways GatewaysConfig `koanf:"gateways"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

type WorkerConfig struct {
	Interval   time.Duration `koanf:"interval" validate:"required"`
	BatchSize  int           `koanf:"batch_size" validate:"required"`
	SessionTTL time.Duration `koanf:"session_ttl" validate:"required"`
}

type GatewaysConfig struct {
	// Timeout bounds the single HTTP exchange of a gateway call. There is
	// no retry underneath it.
	Timeout   time.Duration `koanf:"timeout" validate:"required"`
	InterPos  GatewayConfig `koanf:"interpos"`
	KuveytPos GatewayConfig `koanf:"kuveytpos"`
}

type GatewayConfig struct {
	APIURL       string        `koanf:"api_url" validate:"required"`
	Gateway3DURL string        `koanf:"gateway_3d_url" validate:"required"`
	Account      AccountConfig `koanf:"account"`
}

type AccountConfig struct {
	ClientID   string `koanf:"client_id" validate:"required"`
	Username   string `koanf:"username" validate:"required"`
	Password   string `koanf:"password" validate:"required"`
	StoreKey   string `koanf:"store_key" validate:"required"`
	CustomerID string `koanf:"customer_id"`
	Model      string `koanf:"model" validate:"required"`
	Lang       string `koanf:"lang"`
}

// Account converts the credential config into the canonical account object.
func (c AccountConfig) Account() (*domain.Account, error) {
	model, err := parseModel(c.Model)
	if err != nil {
		return nil, err
	}
	lang := c.Lang
	if lang == "" {
		lang = "tr"
	}
	return &domain.Account{
		ClientID:   c.ClientID,
		Username:   c.Username,
		Password:   c.Password,
		StoreKey:   c.StoreKey,
		CustomerID: c.CustomerID,
		Model:      model,
		Lang:       lang,
	}, nil
}

func parseModel(s string) (domain.SecurityModel, error) {
	switch domain.SecurityModel(s) {
	case domain.ModelNonSecure, domain.Model3DSecure, domain.Model3DPay, domain.Model3DHost:
		return domain.SecurityModel(s), nil
	}
	return "", fmt.Errorf("unknown security model %q", s)
}

// NewLogger builds the process logger at the configured level.
func (c LoggerConfig) NewLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	err := k.Load(env.Provider("GATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "GATEWAY_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}
