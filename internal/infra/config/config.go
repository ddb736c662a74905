package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/telegram"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envProduction = "production"

type Config struct {
	AppEnv   string
	LogLevel string

	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	Issuer            string
	Audience          string

	TelegramBotToken   string
	AuthMode           telegram.AuthMode
	TelegramAuthMaxAge time.Duration

	HTTPAddress      string
	GRPCAddress      string
	HTTPSCertFile    string
	HTTPSKeyFile     string
	AllowedOrigins   []string
	AllowCredentials bool
	CookieDomain     string
	HealthInterval   time.Duration
}

var required = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS",
	"JWT_PRIVATE_KEY_PATH",
	"JWT_PUBLIC_KEY_PATH",
	"JWT_ISSUER",
	"JWT_AUDIENCE",
	"TELEGRAM_BOT_TOKEN",
}

// Load reads config.json (optional), .env (optional) and the environment.
// Environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "720h")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("GRPC_ADDRESS", ":50051")
	v.SetDefault("AUTH_MODE", "strict")
	v.SetDefault("TELEGRAM_AUTH_MAX_AGE", telegram.DefaultMaxAge.String())
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HEALTH_INTERVAL", "15s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("Error reading config file, %w", err)
		}
	}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, customErrors.NewConfiguration("required variables are not set: " + strings.Join(missing, ", "))
	}

	if err := telegram.ValidateBotToken(v.GetString("TELEGRAM_BOT_TOKEN")); err != nil {
		return nil, err
	}

	mode, err := telegram.ParseAuthMode(v.GetString("AUTH_MODE"))
	if err != nil {
		return nil, err
	}
	appEnv := strings.ToLower(v.GetString("APP_ENV"))
	if mode == telegram.ModeDevelopmentBypass && appEnv == envProduction {
		return nil, customErrors.NewConfiguration("AUTH_MODE=development_bypass is not allowed in production")
	}

	cfg := &Config{
		AppEnv:   appEnv,
		LogLevel: v.GetString("LOG_LEVEL"),

		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddress:  v.GetString("REDIS_ADDRESS"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Audience:          v.GetString("JWT_AUDIENCE"),

		TelegramBotToken:   v.GetString("TELEGRAM_BOT_TOKEN"),
		AuthMode:           mode,
		TelegramAuthMaxAge: v.GetDuration("TELEGRAM_AUTH_MAX_AGE"),

		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		GRPCAddress:      v.GetString("GRPC_ADDRESS"),
		HTTPSCertFile:    v.GetString("HTTPS_CERT_FILE"),
		HTTPSKeyFile:     v.GetString("HTTPS_KEY_FILE"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		CookieDomain:     v.GetString("COOKIE_DOMAIN"),
		HealthInterval:   v.GetDuration("HEALTH_INTERVAL"),
	}

	cfg.AllowedOrigins, err = parseList(v.GetString("ALLOWED_ORIGINS"))
	if err != nil {
		return nil, customErrors.NewConfiguration("ALLOWED_ORIGINS: " + err.Error())
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, customErrors.NewConfiguration("token TTLs must be positive")
	}
	if cfg.TelegramAuthMaxAge <= 0 {
		return nil, customErrors.NewConfiguration("TELEGRAM_AUTH_MAX_AGE must be positive")
	}
	if (cfg.HTTPSCertFile == "") != (cfg.HTTPSKeyFile == "") {
		return nil, customErrors.NewConfiguration("HTTPS_CERT_FILE and HTTPS_KEY_FILE must be set together")
	}

	return cfg, nil
}

// TLSEnabled reports whether both servers should serve TLS.
func (c *Config) TLSEnabled() bool {
	return c.HTTPSCertFile != "" && c.HTTPSKeyFile != ""
}

// parseList accepts a JSON array or a comma-separated list.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
