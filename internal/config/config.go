// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to an
// environment variable; required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	RefreshSecret  string // symmetric secret signing refresh tokens
	PrivateKeyPath string // PEM file with the RSA key signing access tokens
	PublicKeyPath  string // PEM file with the RSA key verifying access tokens
	Issuer         string // iss claim stamped into every token
	CookieDomain   string // domain attribute on the token cookies (optional)
	BcryptCost     int    // bcrypt cost for password hashing
	AMQPURL        string // RabbitMQ URL for audit events (optional)
}

// Load reads configuration values from environment variables.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		RefreshSecret:  must("REFRESH_TOKEN_SECRET"),
		PrivateKeyPath: must("ACCESS_TOKEN_PRIVATE_KEY_PATH"),
		PublicKeyPath:  must("ACCESS_TOKEN_PUBLIC_KEY_PATH"),
		Issuer:         envStr("TOKEN_ISSUER", "auth-service"),
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AMQPURL:        os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
