package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string

	JWTSecret string
	JWTIssuer string

	// Backend REST API, the system of record for registers
	BackendBaseURL string
	BackendTimeout time.Duration

	CORSAllowedOrigins []string
	RateLimit          string
	RedisURL           string

	PosthogAPIKey   string
	PosthogEndpoint string

	// Register business rules
	MixedPaymentMinMethods         int
	VarianceWarningPct             decimal.Decimal
	VarianceCriticalPct            decimal.Decimal
	RequireNotesOnCriticalVariance bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000/api")
	v.SetDefault("BACKEND_TIMEOUT", "30s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT", "120-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("POSTHOG_ENDPOINT", "")
	v.SetDefault("MIXED_PAYMENT_MIN_METHODS", 2)
	v.SetDefault("VARIANCE_WARNING_PCT", "1")
	v.SetDefault("VARIANCE_CRITICAL_PCT", "5")
	v.SetDefault("REQUIRE_NOTES_ON_CRITICAL_VARIANCE", false)

	v.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if cfg.IsProduction {
			return nil, errMissing("JWT_SECRET")
		}
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = v.GetString("JWT_ISSUER")

	cfg.BackendBaseURL = strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/")
	if cfg.BackendBaseURL == "" {
		return nil, errMissing("BACKEND_BASE_URL")
	}

	timeoutStr := v.GetString("BACKEND_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
		log.Printf("Warning: Invalid value for BACKEND_TIMEOUT ('%s'). Defaulting to %s.\n", timeoutStr, timeout)
	}
	cfg.BackendTimeout = timeout

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.RedisURL = v.GetString("REDIS_URL")

	cfg.PosthogAPIKey = v.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = v.GetString("POSTHOG_ENDPOINT")
	if cfg.PosthogAPIKey == "" {
		log.Println("Warning: POSTHOG_API_KEY not set. Analytics events will not be sent.")
	}

	cfg.MixedPaymentMinMethods = v.GetInt("MIXED_PAYMENT_MIN_METHODS")
	if cfg.MixedPaymentMinMethods < 1 {
		log.Printf("Warning: MIXED_PAYMENT_MIN_METHODS must be at least 1, got %d. Defaulting to 2.\n", cfg.MixedPaymentMinMethods)
		cfg.MixedPaymentMinMethods = 2
	}
	cfg.VarianceWarningPct = decimalSetting(v, "VARIANCE_WARNING_PCT", decimal.NewFromInt(1))
	cfg.VarianceCriticalPct = decimalSetting(v, "VARIANCE_CRITICAL_PCT", decimal.NewFromInt(5))
	if cfg.VarianceCriticalPct.LessThan(cfg.VarianceWarningPct) {
		log.Printf("Warning: VARIANCE_CRITICAL_PCT (%s) is below VARIANCE_WARNING_PCT (%s). Using the warning threshold for both.\n",
			cfg.VarianceCriticalPct, cfg.VarianceWarningPct)
		cfg.VarianceCriticalPct = cfg.VarianceWarningPct
	}
	cfg.RequireNotesOnCriticalVariance = v.GetBool("REQUIRE_NOTES_ON_CRITICAL_VARIANCE")

	return cfg, nil
}

func decimalSetting(v *viper.Viper, key string, fallback decimal.Decimal) decimal.Decimal {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type missingSettingError string

func (e missingSettingError) Error() string {
	return "required setting " + string(e) + " is not set"
}

func errMissing(key string) error {
	return missingSettingError(key)
}
