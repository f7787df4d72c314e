package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/projecthub/internal/domain/auth"
)

// Rate limit backends.
const (
	BackendMemory = "memory"
	BackendValkey = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Postgres  PostgresConfig  `yaml:"postgres"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	TrustedProxies []string      `yaml:"trustedProxies"`
}

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	Secret       string        `yaml:"secret"`
	TokenTTL     time.Duration `yaml:"tokenTtl"`
	Issuer       string        `yaml:"issuer"`
	PasswordCost int           `yaml:"passwordCost"`
}

// RateLimitConfig drives the credential attempt limiter.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled"`
	MaxAttempts     int           `yaml:"maxAttempts"`
	Window          time.Duration `yaml:"window"`
	Backend         string        `yaml:"backend"`
	CleanupInterval time.Duration `yaml:"cleanupInterval"`
	FailOpen        bool          `yaml:"failOpen"`
	Valkey          ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared limiter.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// applyEnvOverrides rejects malformed values instead of silently keeping the default.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_TRUSTED_PROXIES"); v != "" {
		cfg.HTTP.TrustedProxies = splitList(v)
	}
	if v := firstEnv("AUTH_JWT_SECRET", "JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := firstEnv("AUTH_TOKEN_TTL", "JWT_EXPIRES_IN"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse AUTH_TOKEN_TTL: %w", err)
		}
		cfg.Auth.TokenTTL = parsed
	}
	if v := os.Getenv("AUTH_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := os.Getenv("AUTH_PASSWORD_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse AUTH_PASSWORD_COST: %w", err)
		}
		cfg.Auth.PasswordCost = parsed
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		cfg.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("RATE_LIMIT_MAX_ATTEMPTS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse RATE_LIMIT_MAX_ATTEMPTS: %w", err)
		}
		cfg.RateLimit.MaxAttempts = parsed
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse RATE_LIMIT_WINDOW: %w", err)
		}
		cfg.RateLimit.Window = parsed
	}
	if v := os.Getenv("RATE_LIMIT_BACKEND"); v != "" {
		cfg.RateLimit.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("RATE_LIMIT_VALKEY_ADDR"); v != "" {
		cfg.RateLimit.Valkey.Addr = v
	}
	if v := os.Getenv("RATE_LIMIT_FAIL_OPEN"); v != "" {
		cfg.RateLimit.FailOpen = parseBool(v)
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("parse POSTGRES_MAX_CONNS: %w", err)
		}
		cfg.Postgres.MaxConns = int32(parsed)
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("parse POSTGRES_MIN_CONNS: %w", err)
		}
		cfg.Postgres.MinConns = int32(parsed)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:     24 * time.Hour,
			Issuer:       "projecthub",
			PasswordCost: 12,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			MaxAttempts:     5,
			Window:          15 * time.Minute,
			Backend:         BackendMemory,
			CleanupInterval: time.Minute,
			Valkey: ValkeyConfig{
				Prefix: "ratelimit:auth",
			},
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	for _, proxy := range c.HTTP.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("http.trustedProxies entry %q is not an IP or CIDR", proxy)
			}
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret is required (set AUTH_JWT_SECRET)")
	}
	if len(c.Auth.Secret) < auth.MinSecretLength {
		return fmt.Errorf("auth.secret must be at least %d bytes", auth.MinSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.PasswordCost < bcrypt.MinCost || c.Auth.PasswordCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.passwordCost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxAttempts <= 0 {
			return errors.New("rateLimit.maxAttempts must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return errors.New("rateLimit.window must be positive")
		}
		switch c.RateLimit.Backend {
		case BackendMemory:
		case BackendValkey:
			if strings.TrimSpace(c.RateLimit.Valkey.Addr) == "" {
				return errors.New("rateLimit.valkey.addr cannot be empty when backend is valkey")
			}
		default:
			return fmt.Errorf("rateLimit.backend %q is not supported", c.RateLimit.Backend)
		}
	}
	if c.Postgres.MaxConns < 0 || c.Postgres.MinConns < 0 {
		return errors.New("postgres pool sizes cannot be negative")
	}
	return nil
}
