package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultResetTokenSecret = "change-me-reset-secret"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Mail      MailConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AuthConfig holds password hashing and reset token settings.
type AuthConfig struct {
	ResetTokenSecret string
	ResetTokenExpiry time.Duration
	BcryptCost       int

	// Bootstrap account created on an empty database. Signup is restricted
	// to volunteers, so somebody has to exist first.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	FromName     string
	FrontURL     string
	QueueEnabled bool
}

type SchedulerConfig struct {
	ResetTokenSweep string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "3333"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "popaccueil"),
			Password: getEnv("DB_PASSWORD", "popaccueil"),
			DBName:   getEnv("DB_NAME", "popaccueil"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			ResetTokenSecret:       getEnv("RESET_TOKEN_SECRET", defaultResetTokenSecret),
			ResetTokenExpiry:       parseDuration(getEnv("RESET_TOKEN_EXPIRY", "1h"), time.Hour),
			BcryptCost:             parseInt(getEnv("BCRYPT_COST", "12"), 12),
			BootstrapAdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", ""),
			BootstrapAdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Mail: MailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     parseInt(getEnv("SMTP_PORT", "587"), 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("MAIL_FROM_EMAIL", "noreply@popaccueil.org"),
			FromName:     getEnv("MAIL_FROM_NAME", "Pop Accueil"),
			FrontURL:     strings.TrimRight(getEnv("FRONT_URL", "http://localhost:3000"), "/"),
			QueueEnabled: parseBool(getEnv("MAIL_QUEUE_ENABLED", "false")),
		},
		Scheduler: SchedulerConfig{
			ResetTokenSweep: getEnv("RESET_TOKEN_SWEEP_SCHEDULE", "@every 15m"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings that are only acceptable on a developer machine.
func (c *Config) Validate() error {
	if c.Auth.ResetTokenSecret == "" {
		return fmt.Errorf("RESET_TOKEN_SECRET must not be empty")
	}
	if c.Server.Environment != "development" && c.Auth.ResetTokenSecret == defaultResetTokenSecret {
		return fmt.Errorf("RESET_TOKEN_SECRET must be set outside development")
	}
	if c.Auth.ResetTokenExpiry <= 0 {
		return fmt.Errorf("RESET_TOKEN_EXPIRY must be positive")
	}
	if c.Mail.QueueEnabled && !c.Redis.Enabled {
		return fmt.Errorf("MAIL_QUEUE_ENABLED requires REDIS_ENABLED")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// SMTPConfigured reports whether outgoing mail can actually be delivered.
func (c *MailConfig) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
