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
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Liveness   LivenessConfig   `mapstructure:"liveness"`
	Attendance AttendanceConfig `mapstructure:"attendance"`
	Email      EmailConfig      `mapstructure:"email"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	Env             string        `mapstructure:"env"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string              `mapstructure:"host"`
	Port            string              `mapstructure:"port"`
	User            string              `mapstructure:"user"`
	Password        string              `mapstructure:"password"`
	Name            string              `mapstructure:"name"`
	MaxOpenConns    int                 `mapstructure:"max_open_conns"`
	MaxIdleConns    int                 `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration       `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration       `mapstructure:"conn_max_idle_time"`
	Retry           DatabaseRetryConfig `mapstructure:"retry"`
	CircuitBreaker  CBConfig            `mapstructure:"circuit_breaker"`
}

type DatabaseRetryConfig struct {
	Enabled         *bool          `mapstructure:"enabled"`
	MaxRetries      *int           `mapstructure:"max_retries"`
	InitialInterval *time.Duration `mapstructure:"initial_interval"`
	MaxInterval     *time.Duration `mapstructure:"max_interval"`
	Multiplier      *float64       `mapstructure:"multiplier"`
	Randomization   *float64       `mapstructure:"randomization"`
	FatalErrorTypes []string       `mapstructure:"fatal_error_types"`
}

type CBConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxFailures      uint32        `mapstructure:"max_failures"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
	ResetTimeout     time.Duration `mapstructure:"reset_timeout"`
}

type JWTConfig struct {
	AccessSecret string        `mapstructure:"access_secret"`
	AccessExpiry time.Duration `mapstructure:"access_expiry"`
}

// LivenessConfig controls the device offline sweeper.
type LivenessConfig struct {
	// StaleAfter is how long a device may go without a heartbeat before
	// the sweeper marks it offline.
	StaleAfter   time.Duration `mapstructure:"stale_after"`
	SweepEvery   time.Duration `mapstructure:"sweep_every"`
	SweepTimeout time.Duration `mapstructure:"sweep_timeout"`
}

// AttendanceConfig controls the reconciliation engine and the daily
// missed punch-in trigger.
type AttendanceConfig struct {
	// ApplyGrace adds the calendar's grace minutes to the lateness
	// threshold. Off by default: lateness is compared strictly against
	// the calendar start time.
	ApplyGrace bool `mapstructure:"apply_grace"`
	// PerUserNotify sends one email per absentee instead of a single
	// admin digest.
	PerUserNotify   bool          `mapstructure:"per_user_notify"`
	ExcludedRoles   []string      `mapstructure:"excluded_roles"`
	RecheckInterval time.Duration `mapstructure:"recheck_interval"`
	NotifyTimeout   time.Duration `mapstructure:"notify_timeout"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Region      string `mapstructure:"region"`
	From        string `mapstructure:"from"`
	AdminEmail  string `mapstructure:"admin_email"`
	SubjectTag  string `mapstructure:"subject_tag"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "localhost"),
			Env:             getEnv("ENV", "development"),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			TrustedProxies:  getEnvAsSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			CORSOrigins:     getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			User:            getEnv("DB_USER", "handpass"),
			Password:        getEnv("DB_PASSWORD", "handpass"),
			Name:            getEnv("DB_NAME", "handpass"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Retry: DatabaseRetryConfig{
				Enabled:         getEnvAsBoolPtr("DB_RETRY_ENABLED", true),
				MaxRetries:      getEnvAsIntPtr("DB_RETRY_MAX_RETRIES", 3),
				InitialInterval: getEnvAsDurationPtr("DB_RETRY_INITIAL_INTERVAL", 100*time.Millisecond),
				MaxInterval:     getEnvAsDurationPtr("DB_RETRY_MAX_INTERVAL", 2*time.Second),
				Multiplier:      getEnvAsFloatPtr("DB_RETRY_MULTIPLIER", 2.0),
				Randomization:   getEnvAsFloatPtr("DB_RETRY_RANDOMIZATION", 0.2),
			},
			CircuitBreaker: CBConfig{
				Enabled:          getEnvAsBool("DB_CIRCUIT_BREAKER_ENABLED", true),
				MaxFailures:      uint32(getEnvAsInt("DB_MAX_FAILURES", 5)),
				FailureThreshold: getEnvAsFloat("DB_FAILURE_THRESHOLD", 0.5),
				ResetTimeout:     getEnvAsDuration("DB_RESET_TIMEOUT", 30*time.Second),
			},
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 12*time.Hour),
		},
		Liveness: LivenessConfig{
			StaleAfter:   getEnvAsDuration("DEVICE_STALE_AFTER", 10*time.Second),
			SweepEvery:   getEnvAsDuration("DEVICE_SWEEP_EVERY", time.Minute),
			SweepTimeout: getEnvAsDuration("DEVICE_SWEEP_TIMEOUT", 30*time.Second),
		},
		Attendance: AttendanceConfig{
			ApplyGrace:      getEnvAsBool("ATTENDANCE_APPLY_GRACE", false),
			PerUserNotify:   getEnvAsBool("ATTENDANCE_PER_USER_NOTIFY", false),
			ExcludedRoles:   getEnvAsSlice("ATTENDANCE_EXCLUDED_ROLES", []string{"admin", "superadmin"}),
			RecheckInterval: getEnvAsDuration("ATTENDANCE_RECHECK_INTERVAL", time.Minute),
			NotifyTimeout:   getEnvAsDuration("ATTENDANCE_NOTIFY_TIMEOUT", 30*time.Second),
		},
		Email: EmailConfig{
			Enabled:    getEnvAsBool("EMAIL_ENABLED", false),
			Region:     getEnv("AWS_SES_REGION", "ap-south-1"),
			From:       getEnv("EMAIL_FROM", "Attendance System <no-reply@company.com>"),
			AdminEmail: getEnv("ADMIN_EMAIL", ""),
			SubjectTag: getEnv("EMAIL_SUBJECT_TAG", ""),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("ENABLE_METRICS", true),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters long")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}
	if c.Liveness.StaleAfter <= 0 {
		return fmt.Errorf("DEVICE_STALE_AFTER must be greater than 0")
	}
	if c.Liveness.SweepEvery <= 0 {
		return fmt.Errorf("DEVICE_SWEEP_EVERY must be greater than 0")
	}
	if c.Attendance.RecheckInterval <= 0 {
		return fmt.Errorf("ATTENDANCE_RECHECK_INTERVAL must be greater than 0")
	}
	if c.Attendance.NotifyTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_NOTIFY_TIMEOUT must be greater than 0")
	}
	if c.Email.Enabled && !c.Attendance.PerUserNotify && c.Email.AdminEmail == "" {
		return fmt.Errorf("ADMIN_EMAIL is required for digest notifications")
	}
	if c.Database.CircuitBreaker.Enabled {
		if c.Database.CircuitBreaker.MaxFailures < 1 {
			return fmt.Errorf("DB_MAX_FAILURES must be at least 1 when circuit breaker is enabled")
		}
		if c.Database.CircuitBreaker.FailureThreshold <= 0 ||
			c.Database.CircuitBreaker.FailureThreshold > 1.0 {
			return fmt.Errorf("DB_FAILURE_THRESHOLD must be between 0 and 1.0")
		}
	}

	if c.Server.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	insecureDefaults := []string{"secret", "your-secret-key", "change-this"}
	for _, v := range insecureDefaults {
		if strings.Contains(strings.ToLower(c.JWT.AccessSecret), v) {
			return fmt.Errorf("default/insecure JWT access secret detected in production")
		}
	}
	if len(c.Database.Password) < 16 {
		return fmt.Errorf("database password must be at least 16 characters in production (current length: %d)", len(c.Database.Password))
	}
	if c.Logging.Encoding != "json" {
		return fmt.Errorf("production logging should use JSON format")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnvAsBoolPtr(key string, defaultValue bool) *bool {
	v := getEnvAsBool(key, defaultValue)
	return &v
}

func getEnvAsIntPtr(key string, defaultValue int) *int {
	v := getEnvAsInt(key, defaultValue)
	return &v
}

func getEnvAsDurationPtr(key string, defaultValue time.Duration) *time.Duration {
	v := getEnvAsDuration(key, defaultValue)
	return &v
}

func getEnvAsFloatPtr(key string, defaultValue float64) *float64 {
	v := getEnvAsFloat(key, defaultValue)
	return &v
}
