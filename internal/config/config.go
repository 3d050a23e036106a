// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	App      App
	DB       DB
	Password Password
	Kafka    Kafka
	CORS     CORS
}

// App holds HTTP listener and logging settings.
type App struct {
	Host           string
	Port           string `validate:"required,numeric"`
	LogLevel       string `validate:"required,oneof=debug info warn error dpanic panic fatal"`
	SwaggerEnabled bool
}

// DB holds PostgreSQL connection settings.
type DB struct {
	Host         string `validate:"required"`
	Port         int    `validate:"min=1,max=65535"`
	User         string `validate:"required"`
	Password     string
	Name         string `validate:"required"`
	SSLMode      string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns int    `validate:"min=1"`
	MaxIdleConns int    `validate:"min=0"`
}

// Password selects the hashing scheme for new digests.
type Password struct {
	Algorithm  string `validate:"oneof=bcrypt argon2id"`
	BcryptCost int    `validate:"min=4,max=31"`
}

// Kafka holds account event publishing settings. Empty Brokers disables publishing.
type Kafka struct {
	Brokers []string
	Topic   string `validate:"required"`
}

// CORS holds cross-origin settings applied to every route.
type CORS struct {
	AllowedOrigins []string `validate:"min=1"`
	AllowedMethods []string `validate:"min=1"`
	AllowedHeaders []string
}

// Addr returns the listen address.
func (a App) Addr() string {
	return net.JoinHostPort(a.Host, a.Port)
}

// DSN returns the pgx connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads variables from the env file at path (a missing file is ignored),
// applies defaults and validates the result.
func Load(path string) (Config, error) {
	if path != "" {
		_ = godotenv.Load(path)
	}

	dbPort, err := getInt("DB_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 16)
	if err != nil {
		return Config{}, err
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 8)
	if err != nil {
		return Config{}, err
	}
	bcryptCost, err := getInt("BCRYPT_COST", 10)
	if err != nil {
		return Config{}, err
	}
	swagger, err := getBool("APP_SWAGGER_ENABLED", true)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: App{
			Host:           getEnv("APP_HOST", ""),
			Port:           getEnv("APP_PORT", getEnv("PORT", "3000")),
			LogLevel:       getEnv("APP_LOG_LEVEL", "info"),
			SwaggerEnabled: swagger,
		},
		DB: DB{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         dbPort,
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "fluxio"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		Password: Password{
			Algorithm:  strings.ToLower(getEnv("PASSWORD_HASH_ALGORITHM", "bcrypt")),
			BcryptCost: bcryptCost,
		},
		Kafka: Kafka{
			Brokers: getList("KAFKA_BROKERS", nil),
			Topic:   getEnv("USER_EVENTS_TOPIC", "user-events"),
		},
		CORS: CORS{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getList("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type"}),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var cleaned []string
	for _, p := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return def
	}
	return cleaned
}
