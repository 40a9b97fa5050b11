package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process-wide settings. It is built once at startup and
// treated as immutable afterwards; the token secret and cookie policy are
// passed into the auth layer rather than read from the environment at call
// time, so tests can inject their own.
type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		Driver string
		DSN    string
	}
	Token struct {
		Secret   string
		Lifetime time.Duration
	}
	CookieDays int
	BcryptCost int
	Log        struct {
		Level  string
		Pretty bool
	}
	Env string
}

// Production reports whether the process runs with the production cookie
// policy (Secure, SameSite=None).
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads config from environment (LINKSTASH_ prefix) and optional linkstash.yaml.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LINKSTASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("linkstash")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional config file

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("token.lifetime", "24h")
	v.SetDefault("cookie.days", 7)
	v.SetDefault("bcrypt.cost", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("env", "development")

	cfg := &Config{}
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.DB.Driver = v.GetString("db.driver")
	cfg.DB.DSN = v.GetString("db.dsn")
	cfg.Token.Secret = v.GetString("token.secret")
	cfg.CookieDays = v.GetInt("cookie.days")
	cfg.BcryptCost = v.GetInt("bcrypt.cost")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Pretty = v.GetBool("log.pretty")
	cfg.Env = v.GetString("env")

	lifetime, err := time.ParseDuration(v.GetString("token.lifetime"))
	if err != nil {
		return nil, fmt.Errorf("invalid LINKSTASH_TOKEN_LIFETIME: %w", err)
	}
	cfg.Token.Lifetime = lifetime

	if cfg.DB.Driver == "" {
		return nil, fmt.Errorf("LINKSTASH_DB_DRIVER is required (sqlite3, mysql, postgres)")
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("LINKSTASH_DB_DSN is required")
	}
	if cfg.Token.Secret == "" {
		return nil, fmt.Errorf("LINKSTASH_TOKEN_SECRET is required")
	}
	if cfg.CookieDays <= 0 {
		return nil, fmt.Errorf("LINKSTASH_COOKIE_DAYS must be positive")
	}

	return cfg, nil
}
