package config

import (
	"testing"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/telegram"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("JWT_PRIVATE_KEY_PATH", "priv.pem")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "pub.pem")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:ABC")
	t.Setenv("JWT_ISSUER", "gamefi-auth")
	t.Setenv("JWT_AUDIENCE", "gamefi-app")
}

func TestLoad_Success(t *testing.T) {
	setRequired(t)
	t.Setenv("ACCESS_TOKEN_TTL", "2m")
	t.Setenv("REFRESH_TOKEN_TTL", "3h")
	// необязательные, но пусть будут
	t.Setenv("ALLOWED_ORIGINS", `["https://app.example.com"]`)
	t.Setenv("ALLOW_CREDENTIALS", "true")
	t.Setenv("HTTPS_CERT_FILE", "cert.pem")
	t.Setenv("HTTPS_KEY_FILE", "key.pem")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("AccessTokenTTL want 2m, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshTokenTTL != 3*time.Hour {
		t.Fatalf("RefreshTokenTTL want 3h, got %v", cfg.RefreshTokenTTL)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
	if !cfg.AllowCredentials || !cfg.TLSEnabled() {
		t.Fatal("credentials and TLS flags must be picked up")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AuthMode != telegram.ModeStrict {
		t.Fatalf("AuthMode want strict, got %v", cfg.AuthMode)
	}
	if cfg.TelegramAuthMaxAge != 5*time.Minute {
		t.Fatalf("TelegramAuthMaxAge want 5m, got %v", cfg.TelegramAuthMaxAge)
	}
	if cfg.HTTPAddress != ":8080" || cfg.GRPCAddress != ":50051" {
		t.Fatalf("addresses: %q %q", cfg.HTTPAddress, cfg.GRPCAddress)
	}
	if cfg.TLSEnabled() {
		t.Fatal("TLS must be off without cert files")
	}
}

func TestLoad_CommaSeparatedOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// задаём всё, КРОМЕ JWT_ISSUER
	setRequired(t)
	t.Setenv("JWT_ISSUER", "")

	_, err := Load()
	if !customErrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error due to missing JWT_ISSUER, got %v", err)
	}
}

func TestLoad_PlaceholderBotToken(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "YOUR_BOT_TOKEN")

	if _, err := Load(); !customErrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoad_BypassMode(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_MODE", "development_bypass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AuthMode != telegram.ModeDevelopmentBypass {
		t.Fatalf("AuthMode want bypass, got %v", cfg.AuthMode)
	}

	t.Setenv("APP_ENV", "production")
	if _, err := Load(); !customErrors.IsConfiguration(err) {
		t.Fatalf("bypass in production must fail, got %v", err)
	}
}

func TestLoad_UnknownAuthMode(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_MODE", "off")

	if _, err := Load(); !customErrors.IsConfiguration(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoad_HalfTLS(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTPS_CERT_FILE", "cert.pem")

	if _, err := Load(); err == nil {
		t.Fatal("cert without key must fail")
	}
}
