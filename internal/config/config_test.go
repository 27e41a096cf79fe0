package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Env:  "development",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
			CircuitBreaker: CBConfig{
				Enabled:          true,
				MaxFailures:      5,
				FailureThreshold: 0.5,
				ResetTimeout:     30 * time.Second,
			},
		},
		JWT: JWTConfig{
			AccessSecret: "0123456789abcdef0123456789abcdef",
			AccessExpiry: 12 * time.Hour,
		},
		Liveness: LivenessConfig{
			StaleAfter:   10 * time.Second,
			SweepEvery:   time.Minute,
			SweepTimeout: 30 * time.Second,
		},
		Attendance: AttendanceConfig{
			ExcludedRoles:   []string{"admin"},
			RecheckInterval: time.Minute,
			NotifyTimeout:   30 * time.Second,
		},
		Email: EmailConfig{
			Enabled:    true,
			AdminEmail: "admin@company.com",
		},
		Logging: LoggingConfig{Level: "info", Encoding: "json"},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "too-short"
	assert.ErrorContains(t, cfg.Validate(), "at least 32 characters")
}

func TestValidate_IdleExceedsOpenConns(t *testing.T) {
	cfg := validConfig()
	cfg.Database.MaxIdleConns = 50
	assert.ErrorContains(t, cfg.Validate(), "DB_MAX_IDLE_CONNS")
}

func TestValidate_LivenessIntervals(t *testing.T) {
	cfg := validConfig()
	cfg.Liveness.StaleAfter = 0
	assert.ErrorContains(t, cfg.Validate(), "DEVICE_STALE_AFTER")

	cfg = validConfig()
	cfg.Liveness.SweepEvery = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "DEVICE_SWEEP_EVERY")
}

func TestValidate_DigestNeedsAdminEmail(t *testing.T) {
	cfg := validConfig()
	cfg.Email.AdminEmail = ""
	assert.ErrorContains(t, cfg.Validate(), "ADMIN_EMAIL")

	// Per-user mode does not depend on a configured admin recipient.
	cfg.Attendance.PerUserNotify = true
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Env = "production"
	cfg.Database.Password = "short"
	assert.ErrorContains(t, cfg.Validate(), "database password")

	cfg.Database.Password = "a-very-long-production-secret"
	cfg.JWT.AccessSecret = "change-this-change-this-change-this!"
	assert.ErrorContains(t, cfg.Validate(), "insecure JWT")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Liveness.StaleAfter)
	assert.Equal(t, time.Minute, cfg.Liveness.SweepEvery)
	assert.False(t, cfg.Attendance.ApplyGrace)
	assert.False(t, cfg.Attendance.PerUserNotify)
	assert.Contains(t, cfg.Attendance.ExcludedRoles, "admin")
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("ATTENDANCE_EXCLUDED_ROLES", "admin, superadmin , ")
	got := getEnvAsSlice("ATTENDANCE_EXCLUDED_ROLES", nil)
	assert.Equal(t, []string{"admin", "superadmin"}, got)
}
