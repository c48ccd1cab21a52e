package config

import (
	"os"
	"strconv"
)

// Config collects the environment-driven settings the server needs. Values
// fall back to development defaults; production deployments must override
// SECRET_KEY.
type Config struct {
	AppEnv string
	Port   string

	PGHost     string
	PGPort     string
	PGUser     string
	PGPassword string
	PGDatabase string

	RedisAddr string

	SecretKey        string
	JWTExpireMinutes int

	DefaultAdminUsername string
	DefaultAdminPassword string
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment.
func Load() *Config {
	expire := 480
	if v := os.Getenv("JWT_EXPIRE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			expire = n
		}
	}

	return &Config{
		AppEnv:               getenv("APP_ENV", "development"),
		Port:                 getenv("PORT", "8080"),
		PGHost:               getenv("PG_HOST", "localhost"),
		PGPort:               getenv("PG_PORT", "5432"),
		PGUser:               getenv("PG_USER", "vanlist"),
		PGPassword:           os.Getenv("PG_PASSWORD"),
		PGDatabase:           getenv("PG_DB", "vanlist"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		SecretKey:            getenv("SECRET_KEY", "change-me-in-production-use-a-random-64-char-string"),
		JWTExpireMinutes:     expire,
		DefaultAdminUsername: getenv("DEFAULT_ADMIN_USERNAME", "admin"),
		DefaultAdminPassword: getenv("DEFAULT_ADMIN_PASSWORD", "admin123"),
	}
}

// DSN assembles the Postgres connection string.
func (c *Config) DSN() string {
	return "postgres://" + c.PGUser + ":" + c.PGPassword + "@" + c.PGHost + ":" + c.PGPort + "/" + c.PGDatabase + "?sslmode=disable"
}
