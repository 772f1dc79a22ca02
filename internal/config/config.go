package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Payroll    PayrollConfig
	Incentive  IncentiveConfig
	Webhook    WebhookConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port      int
	Env       string
	LogLevel  string
	OutputDir string
}

// PayrollConfig holds payroll-run policy knobs.
type PayrollConfig struct {
	HighValueOverrideThreshold float64
	VarianceAlertPct           float64
}

// IncentiveConfig holds incentive and claw-back policy knobs.
type IncentiveConfig struct {
	DisputeWindowDays  int
	ClawbackWindowDays int
	PoolPenaltyPct     float64
	// ClawbackMethod selects how returns are recovered:
	// PROPORTIONAL charges the original earner, POOL_PENALTY always
	// spreads the charge across the store.
	ClawbackMethod string
}

// WebhookConfig holds the shared token for the POS sales feed.
type WebhookConfig struct {
	Token string
}

// AttendanceConfig points at the biometric attendance feed.
type AttendanceConfig struct {
	BaseURL string
	APIKey  string
}

func Load() (*Config, error) {
	// .env is optional outside local development.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payops"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:      appPort,
		Env:       getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		OutputDir: getEnv("OUTPUT_DIR", "storage"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll policy
	highValue, err := strconv.ParseFloat(getEnv("PAYROLL_HIGH_VALUE_OVERRIDE_THRESHOLD", "10000"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_HIGH_VALUE_OVERRIDE_THRESHOLD: %w", err)
	}
	variancePct, err := strconv.ParseFloat(getEnv("PAYROLL_VARIANCE_ALERT_PCT", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_VARIANCE_ALERT_PCT: %w", err)
	}
	config.Payroll = PayrollConfig{
		HighValueOverrideThreshold: highValue,
		VarianceAlertPct:           variancePct,
	}

	// Incentive policy
	disputeDays, err := strconv.Atoi(getEnv("INCENTIVE_DISPUTE_WINDOW_DAYS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid INCENTIVE_DISPUTE_WINDOW_DAYS: %w", err)
	}
	clawbackDays, err := strconv.Atoi(getEnv("INCENTIVE_CLAWBACK_WINDOW_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid INCENTIVE_CLAWBACK_WINDOW_DAYS: %w", err)
	}
	poolPenaltyPct, err := strconv.ParseFloat(getEnv("INCENTIVE_POOL_PENALTY_PCT", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid INCENTIVE_POOL_PENALTY_PCT: %w", err)
	}
	clawbackMethod := getEnv("INCENTIVE_CLAWBACK_METHOD", "PROPORTIONAL")
	if clawbackMethod != "PROPORTIONAL" && clawbackMethod != "POOL_PENALTY" {
		return nil, fmt.Errorf("invalid INCENTIVE_CLAWBACK_METHOD: %s", clawbackMethod)
	}
	config.Incentive = IncentiveConfig{
		DisputeWindowDays:  disputeDays,
		ClawbackWindowDays: clawbackDays,
		PoolPenaltyPct:     poolPenaltyPct,
		ClawbackMethod:     clawbackMethod,
	}

	// Webhook configuration
	config.Webhook = WebhookConfig{
		Token: getEnv("WEBHOOK_TOKEN", ""),
	}

	// Attendance feed configuration
	config.Attendance = AttendanceConfig{
		BaseURL: getEnv("ATTENDANCE_FEED_URL", "http://localhost:9090"),
		APIKey:  getEnv("ATTENDANCE_FEED_API_KEY", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Webhook.Token == "" {
		return fmt.Errorf("WEBHOOK_TOKEN is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
