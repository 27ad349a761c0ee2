package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Policy    PolicyConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level    string
	Encoding string // json or console
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
	Issuer     string
}

// ExpenseAdmission controls whether logging an expense is checked against
// the matching budget.
type ExpenseAdmission string

const (
	AdmissionOff           ExpenseAdmission = "off"
	AdmissionRequireBudget ExpenseAdmission = "require_budget"
	AdmissionEnforceLimit  ExpenseAdmission = "enforce_limit"
)

type PolicyConfig struct {
	ExpenseAdmission ExpenseAdmission
	// HideForeignRecords answers requests for another user's records with
	// 404 instead of 403.
	HideForeignRecords bool
}

type NotifyConfig struct {
	AMQPURL string
	Queue   string
}

type RateLimitConfig struct {
	AuthMax    int
	AuthWindow time.Duration
}

func Load() (*Config, error) {
	// .env is optional, plain environment variables work too (Docker/K8s)
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	var p parser
	readTimeout := p.int("SERVER_READ_TIMEOUT", 30)
	writeTimeout := p.int("SERVER_WRITE_TIMEOUT", 30)
	jwtExp := p.int("JWT_EXPIRATION_MINUTES", 60)
	refreshExp := p.int("JWT_REFRESH_EXPIRATION_HOURS", 168)
	authMax := p.int("AUTH_RATE_LIMIT", 20)
	hideForeign := p.bool("HIDE_FOREIGN_RECORDS", false)
	if p.err != nil {
		return nil, p.err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "homebudget"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "data/homebudget.db"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Minute,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
			Issuer:     getEnv("JWT_ISSUER", "homebudget"),
		},
		Policy: PolicyConfig{
			ExpenseAdmission:   ExpenseAdmission(strings.ToLower(getEnv("EXPENSE_ADMISSION", string(AdmissionOff)))),
			HideForeignRecords: hideForeign,
		},
		Notify: NotifyConfig{
			AMQPURL: getEnv("AMQP_URL", ""),
			Queue:   getEnv("AMQP_WELCOME_QUEUE", "welcome_notifications"),
		},
		RateLimit: RateLimitConfig{
			AuthMax:    authMax,
			AuthWindow: time.Minute,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Policy.ExpenseAdmission {
	case AdmissionOff, AdmissionRequireBudget, AdmissionEnforceLimit:
	default:
		return fmt.Errorf("unsupported EXPENSE_ADMISSION %q", c.Policy.ExpenseAdmission)
	}
	if c.JWT.Expiration <= 0 || c.JWT.RefreshExp <= 0 {
		return fmt.Errorf("token expirations must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) bool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}
