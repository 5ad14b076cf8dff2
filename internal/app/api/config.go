package api

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoption/domain"
	favoritesdomain "github.com/Apurer/pet-adoption-api/internal/domains/favorites/domain"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                       string
	Environment                string
	LogLevel                   string
	PostgresDSN                string
	LocalStatePath             string
	AuthJWTSecret              string
	ApprovalPolicy             adoptiondomain.ApprovalPolicy
	FavoritesScope             favoritesdomain.Scope
	SessionTTL                 time.Duration
	TemporalAddress            string
	TemporalNamespace          string
	TemporalDisabled           bool
	ChangefeedRetryMaxElapsed  time.Duration
	StoreTimeout               time.Duration
	SessionPurgeIntervalMinute int
	AllowedOrigins             []string
}

// Development reports whether the process runs on a developer machine.
func (c Config) Development() bool {
	switch strings.ToLower(c.Environment) {
	case "local", "dev", "development":
		return true
	}
	return false
}

// LoadConfig loads an optional .env file, reads environment variables (and CONFIG_FILE when set),
// applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}
	return loadConfig(viper.New())
}

func loadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "local")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("LOCAL_STATE_PATH", "")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("ADOPTION_APPROVAL_POLICY", string(adoptiondomain.PolicyKeepPending))
	v.SetDefault("FAVORITES_SCOPE", string(favoritesdomain.ScopeUser))
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("TEMPORAL_ADDRESS", client.DefaultHostPort)
	v.SetDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)
	v.SetDefault("TEMPORAL_DISABLED", false)
	v.SetDefault("CHANGEFEED_RETRY_MAX_ELAPSED_SECONDS", 10)
	v.SetDefault("STORE_TIMEOUT_SECONDS", 5)
	v.SetDefault("SESSION_PURGE_INTERVAL_MINUTES", 0)
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	policy, err := adoptiondomain.ParseApprovalPolicy(v.GetString("ADOPTION_APPROVAL_POLICY"))
	if err != nil {
		return Config{}, fmt.Errorf("ADOPTION_APPROVAL_POLICY: %w", err)
	}
	scope, err := favoritesdomain.ParseScope(v.GetString("FAVORITES_SCOPE"))
	if err != nil {
		return Config{}, fmt.Errorf("FAVORITES_SCOPE: %w", err)
	}

	cfg := Config{
		Port:              strings.TrimSpace(v.GetString("PORT")),
		Environment:       strings.TrimSpace(v.GetString("ENVIRONMENT")),
		LogLevel:          strings.TrimSpace(v.GetString("LOG_LEVEL")),
		PostgresDSN:       strings.TrimSpace(v.GetString("POSTGRES_DSN")),
		LocalStatePath:    strings.TrimSpace(v.GetString("LOCAL_STATE_PATH")),
		AuthJWTSecret:     strings.TrimSpace(v.GetString("AUTH_JWT_SECRET")),
		ApprovalPolicy:    policy,
		FavoritesScope:    scope,
		TemporalAddress:   strings.TrimSpace(v.GetString("TEMPORAL_ADDRESS")),
		TemporalNamespace: strings.TrimSpace(v.GetString("TEMPORAL_NAMESPACE")),
		TemporalDisabled:  v.GetBool("TEMPORAL_DISABLED"),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
	}

	hours := v.GetInt("SESSION_TTL_HOURS")
	if hours <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour

	retry := v.GetInt("CHANGEFEED_RETRY_MAX_ELAPSED_SECONDS")
	if retry <= 0 {
		return Config{}, fmt.Errorf("CHANGEFEED_RETRY_MAX_ELAPSED_SECONDS must be a positive integer")
	}
	cfg.ChangefeedRetryMaxElapsed = time.Duration(retry) * time.Second

	timeout := v.GetInt("STORE_TIMEOUT_SECONDS")
	if timeout <= 0 {
		return Config{}, fmt.Errorf("STORE_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.StoreTimeout = time.Duration(timeout) * time.Second

	minutes := v.GetInt("SESSION_PURGE_INTERVAL_MINUTES")
	if minutes < 0 {
		return Config{}, fmt.Errorf("SESSION_PURGE_INTERVAL_MINUTES must be a positive integer")
	}
	cfg.SessionPurgeIntervalMinute = minutes
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT must not be empty")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
