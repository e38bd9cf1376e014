package config

import (
	"os"
	"strconv"
)

// Environments accepted for PAYPAL_ENVIRONMENT.
const (
	EnvSandbox = "sandbox"
	EnvLive    = "live"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort      string
	PublicBaseURL   string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	SessionSecret   string
	BodyLimit       string
	PayPalClientID  string
	PayPalSecret    string
	PayPalEnv       string
	PayPalBrandName string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/linkpay?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		SessionSecret:   getEnv("SESSION_SECRET", "change-me"),
		BodyLimit:       getEnv("BODY_LIMIT", "16M"),
		PayPalClientID:  os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:    os.Getenv("PAYPAL_SECRET"),
		PayPalEnv:       getEnv("PAYPAL_ENVIRONMENT", EnvSandbox),
		PayPalBrandName: getEnv("PAYPAL_BRAND_NAME", "LinkPay"),
	}
}

// IsSandbox reports whether the gateway targets the PayPal sandbox.
// Diagnostic endpoints and detailed gateway errors are sandbox-only.
func (c *Config) IsSandbox() bool {
	return c.PayPalEnv != EnvLive
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
