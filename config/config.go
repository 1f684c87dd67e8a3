package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Supported backends for the active refresh-token set.
const (
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
	SessionStoreMemory   = "memory"
)

type Config struct {
	Server struct {
		Port            string        `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins"`
		// TrustedProxies lists addresses or CIDR ranges whose
		// X-Forwarded-For header is believed. Empty trusts no one.
		TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	} `mapstructure:"server"`
	Database struct {
		Host           string `mapstructure:"host"`
		Port           string `mapstructure:"port"`
		User           string `mapstructure:"user"`
		Password       string `mapstructure:"password"`
		Name           string `mapstructure:"name"`
		SSLMode        string `mapstructure:"sslmode"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"database"`
	Redis struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	JWT struct {
		AccessSecret  string        `mapstructure:"access_secret"`
		RefreshSecret string        `mapstructure:"refresh_secret"`
		AccessTTL     time.Duration `mapstructure:"access_ttl"`
		RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
		Issuer        string        `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Auth struct {
		BcryptCost          int    `mapstructure:"bcrypt_cost"`
		RotateRefreshTokens bool   `mapstructure:"rotate_refresh_tokens"`
		SessionStore        string `mapstructure:"session_store"`
		CookieSecure        bool   `mapstructure:"cookie_secure"`
	} `mapstructure:"auth"`
	Products struct {
		// ImageBaseURL prefixes product image names that are not already
		// absolute URLs.
		ImageBaseURL string `mapstructure:"image_base_url"`
	} `mapstructure:"products"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

var AppConfig Config

// LoadConfig reads config.yml from path (if present), a .env file from the
// working directory (if present) and the process environment, in increasing
// order of precedence. Nested keys map to env vars with '.' replaced by '_',
// e.g. jwt.access_secret -> JWT_ACCESS_SECRET.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4005")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "shop")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.migrations_path", "file://db/migrations")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Secrets have no default; they must be supplied.
	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "go-shop-api")

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.rotate_refresh_tokens", false)
	v.SetDefault("auth.session_store", SessionStoreRedis)
	v.SetDefault("auth.cookie_secure", true)

	v.SetDefault("products.image_base_url", "http://localhost:4005/images/")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return errors.New("jwt.access_secret (JWT_ACCESS_SECRET) is required")
	}
	if c.JWT.RefreshSecret == "" {
		return errors.New("jwt.refresh_secret (JWT_REFRESH_SECRET) is required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt.access_secret and jwt.refresh_secret must differ")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt.access_ttl and jwt.refresh_ttl must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.Auth.SessionStore {
	case SessionStoreRedis, SessionStorePostgres, SessionStoreMemory:
	default:
		return fmt.Errorf("auth.session_store %q is not one of redis, postgres, memory", c.Auth.SessionStore)
	}
	return nil
}
