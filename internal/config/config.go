package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendMemory   = "memory"
)

type Config struct {
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	GRPCPort string `mapstructure:"GRPC_PORT"`
	HTTPPort string `mapstructure:"HTTP_PORT"`

	StoreBackend string        `mapstructure:"STORE_BACKEND"`
	DatabaseURL  string        `mapstructure:"DATABASE_URL"`
	DBMaxConns   int32         `mapstructure:"DB_MAX_CONNS"`
	MongoURI     string        `mapstructure:"MONGO_URI"`
	MongoDB      string        `mapstructure:"MONGO_DATABASE"`
	MongoTimeout time.Duration `mapstructure:"MONGO_TIMEOUT"`

	RedisURL     string        `mapstructure:"REDIS_URL"`
	SlotLockTTL  time.Duration `mapstructure:"SLOT_LOCK_TTL"`
	SlotLockWait time.Duration `mapstructure:"SLOT_LOCK_WAIT"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	SweepEnabled  bool   `mapstructure:"SWEEP_ENABLED"`
	SweepSchedule string `mapstructure:"SWEEP_SCHEDULE"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "GRPC_PORT", "HTTP_PORT",
	"STORE_BACKEND", "DATABASE_URL", "DB_MAX_CONNS",
	"MONGO_URI", "MONGO_DATABASE", "MONGO_TIMEOUT",
	"REDIS_URL", "SLOT_LOCK_TTL", "SLOT_LOCK_WAIT",
	"JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"SWEEP_ENABLED", "SWEEP_SCHEDULE", "CORS_ORIGINS",
}

// Load reads the environment, after merging a .env file if one exists.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STORE_BACKEND", BackendPostgres)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MONGO_DATABASE", "doctor_booking")
	v.SetDefault("MONGO_TIMEOUT", "10s")
	v.SetDefault("SLOT_LOCK_TTL", "5s")
	v.SetDefault("SLOT_LOCK_WAIT", "2s")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("SWEEP_ENABLED", true)
	v.SetDefault("SWEEP_SCHEDULE", "@every 5m")
	v.SetDefault("CORS_ORIGINS", "")

	// Unmarshal only sees env vars that are bound
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be postgres, mongo or memory, got %q", c.StoreBackend))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.RedisURL != "" && c.SlotLockTTL <= 0 {
		errs = append(errs, errors.New("SLOT_LOCK_TTL must be positive"))
	}
	return errors.Join(errs...)
}
